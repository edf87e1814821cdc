package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/services"
)

type VorgangHandler struct {
	log         *logger.Logger
	integration services.IntegrationService
	query       services.QueryService
}

func NewVorgangHandler(log *logger.Logger, integration services.IntegrationService, query services.QueryService) *VorgangHandler {
	handlerLogger := log.With("handler", "VorgangHandler")
	return &VorgangHandler{log: handlerLogger, integration: integration, query: query}
}

// Submit handles PUT /api/v1/vorgang. 201 on create, 200 on update.
func (vh *VorgangHandler) Submit(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "body_read", err)
		return
	}
	var payload domain.Vorgang
	if err := bindPayload(raw, &payload); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", err)
		return
	}
	if !payload.Typ.Valid() {
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", errInvalidEnum("typ", string(payload.Typ)))
		return
	}
	for _, station := range payload.Stationen {
		if !station.Typ.Valid() || !station.Parlament.Valid() {
			RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", errInvalidEnum("station", string(station.Typ)))
			return
		}
	}

	outcome, err := vh.integration.SubmitVorgang(c.Request.Context(), &payload, raw)
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

// Get handles GET /api/v1/vorgang/:vorgang_id.
func (vh *VorgangHandler) Get(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("vorgang_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	result, err := vh.query.GetVorgang(c.Request.Context(), apiID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// List handles GET /api/v1/vorgang with optional filters.
func (vh *VorgangHandler) List(c *gin.Context) {
	var f repos.VorgangFilter
	if raw := c.Query("wp"); raw != "" {
		wp, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_filter", err)
			return
		}
		wp32 := int32(wp)
		f.Wahlperiode = &wp32
	}
	if raw := c.Query("vgtyp"); raw != "" {
		typ := domain.Vorgangstyp(raw)
		if !typ.Valid() {
			RespondError(c, http.StatusBadRequest, "invalid_filter", errInvalidEnum("vgtyp", raw))
			return
		}
		f.Typ = &typ
	}
	if raw := c.Query("p"); raw != "" {
		parlament := domain.Parlament(raw)
		if !parlament.Valid() {
			RespondError(c, http.StatusBadRequest, "invalid_filter", errInvalidEnum("p", raw))
			return
		}
		f.Parlament = &parlament
	}
	if raw := c.Query("inipsn"); raw != "" {
		f.InitPerson = &raw
	}
	if raw := c.Query("iniorg"); raw != "" {
		f.InitOrg = &raw
	}
	if raw := c.Query("inifch"); raw != "" {
		f.InitFach = &raw
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_filter", err)
			return
		}
		f.Since = &since
	}
	if raw := c.Query("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_filter", err)
			return
		}
		f.Until = &until
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	results, err := vh.query.ListVorgaenge(c.Request.Context(), f, page, perPage)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if results == nil {
		results = []*domain.Vorgang{}
	}
	RespondOK(c, results)
}

// Delete handles DELETE /api/v1/vorgang/:vorgang_id (admin only).
func (vh *VorgangHandler) Delete(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("vorgang_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := vh.integration.DeleteVorgang(c.Request.Context(), apiID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Touches handles GET /api/v1/vorgang/:vorgang_id/touches (admin only).
func (vh *VorgangHandler) Touches(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("vorgang_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	records, err := vh.query.VorgangTouches(c.Request.Context(), apiID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, records)
}
