package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/iapioniers/evasion-backend/internal/http/handlers"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/report"
	"github.com/iapioniers/evasion-backend/internal/server"
	"github.com/iapioniers/evasion-backend/internal/services"
	"github.com/iapioniers/evasion-backend/internal/snapshot"
)

type App struct {
	Log     *logger.Logger
	Router  *gin.Engine
	Cfg     Config
	Store   snapshot.Store
	Evasion services.EvasionService
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig()

	store, err := snapshot.NewStore(cfg.SnapshotDBPath, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init snapshot store: %w", err)
	}
	holder := snapshot.NewHolder(store, log)
	mapping := report.LoadProfessorCourseMapping(cfg.MappingFile, log)

	evasion := services.NewEvasionService(holder, mapping, log)

	router := server.NewRouter(server.RouterConfig{
		Log:            log,
		HealthHandler:  handlers.NewHealthHandler(),
		EvasionHandler: handlers.NewEvasionHandler(evasion),
	})

	return &App{
		Log:     log,
		Router:  router,
		Cfg:     cfg,
		Store:   store,
		Evasion: evasion,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
