package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/services"
)

type SitzungHandler struct {
	log         *logger.Logger
	integration services.IntegrationService
	query       services.QueryService
}

func NewSitzungHandler(log *logger.Logger, integration services.IntegrationService, query services.QueryService) *SitzungHandler {
	handlerLogger := log.With("handler", "SitzungHandler")
	return &SitzungHandler{log: handlerLogger, integration: integration, query: query}
}

// Submit handles PUT /api/v1/sitzung.
func (sh *SitzungHandler) Submit(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "body_read", err)
		return
	}
	var payload domain.Sitzung
	if err := bindPayload(raw, &payload); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", err)
		return
	}
	if payload.Gremium == nil || !payload.Gremium.Parlament.Valid() {
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", errInvalidEnum("gremium", ""))
		return
	}

	outcome, err := sh.integration.SubmitSitzung(c.Request.Context(), &payload, raw)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	status := http.StatusOK
	if outcome.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"api_id": outcome.ApiID})
}

// Get handles GET /api/v1/sitzung/:sitzung_id.
func (sh *SitzungHandler) Get(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("sitzung_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	result, err := sh.query.GetSitzung(c.Request.Context(), apiID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// List handles GET /api/v1/sitzung.
func (sh *SitzungHandler) List(c *gin.Context) {
	var f repos.SitzungFilter
	if raw := c.Query("p"); raw != "" {
		parlament := domain.Parlament(raw)
		if !parlament.Valid() {
			RespondError(c, http.StatusBadRequest, "invalid_filter", errInvalidEnum("p", raw))
			return
		}
		f.Parlament = &parlament
	}
	if raw := c.Query("wp"); raw != "" {
		wp, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_filter", err)
			return
		}
		wp32 := int32(wp)
		f.Wahlperiode = &wp32
	}
	if raw := c.Query("gr"); raw != "" {
		f.GremiumName = &raw
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	results, err := sh.query.ListSitzungen(c.Request.Context(), f, page, perPage)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if results == nil {
		results = []*domain.Sitzung{}
	}
	RespondOK(c, results)
}

// Delete handles DELETE /api/v1/sitzung/:sitzung_id (admin only).
func (sh *SitzungHandler) Delete(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("sitzung_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := sh.integration.DeleteSitzung(c.Request.Context(), apiID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
