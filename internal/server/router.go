package server

import (
	"github.com/gin-gonic/gin"

	"github.com/iapioniers/evasion-backend/internal/http/handlers"
	"github.com/iapioniers/evasion-backend/internal/http/middleware"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	HealthHandler  *handlers.HealthHandler
	EvasionHandler *handlers.EvasionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS())

	router.GET("/healthz", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/evasion-report", cfg.EvasionHandler.GetEvasionReport)
		api.GET("/professor-evasion-risk", cfg.EvasionHandler.GetProfessorRisk)
		api.GET("/student-profile/:user_id", cfg.EvasionHandler.GetStudentProfile)
		api.GET("/raw-logs", cfg.EvasionHandler.GetRawLogs)
	}

	return router
}
