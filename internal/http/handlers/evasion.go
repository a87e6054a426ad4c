package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iapioniers/evasion-backend/internal/http/response"
	pkgerrors "github.com/iapioniers/evasion-backend/internal/pkg/errors"
	"github.com/iapioniers/evasion-backend/internal/services"
)

// EvasionHandler serves the report, professor, profile and raw-log views.
// Every route reads the latest snapshot; none of them trigger collection.
type EvasionHandler struct {
	evasion services.EvasionService
}

func NewEvasionHandler(evasion services.EvasionService) *EvasionHandler {
	return &EvasionHandler{evasion: evasion}
}

func (h *EvasionHandler) GetEvasionReport(c *gin.Context) {
	forceReload := c.Query("force_refresh") == "true"
	rep, err := h.evasion.OverallReport(c.Request.Context(), forceReload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, rep)
}

func (h *EvasionHandler) GetProfessorRisk(c *gin.Context) {
	professorName := c.Query("professor_name")
	if professorName == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_professor_name", errors.New("query parameter 'professor_name' is required"))
		return
	}
	rows, err := h.evasion.ProfessorRisk(c.Request.Context(), professorName)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

func (h *EvasionHandler) GetStudentProfile(c *gin.Context) {
	userID := c.Param("user_id")
	profile, err := h.evasion.StudentProfile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, profile)
}

func (h *EvasionHandler) GetRawLogs(c *gin.Context) {
	forceReload := c.Query("force_refresh") == "true"
	events, err := h.evasion.RawLogs(c.Request.Context(), forceReload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, events)
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNoSnapshot):
		response.RespondError(c, http.StatusServiceUnavailable, "no_snapshot", errors.New("no processed data available yet; run the refresh job first"))
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
