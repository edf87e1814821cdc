package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/requestdata"
	"github.com/parlatrack/backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	integration services.IntegrationService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, integration services.IntegrationService) *AuthHandler {
	handlerLogger := log.With("handler", "AuthHandler")
	return &AuthHandler{log: handlerLogger, authService: authService, integration: integration}
}

type createKeyRequest struct {
	Scope       string     `json:"scope" binding:"required"`
	CollectorID *uuid.UUID `json:"collector_id,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CreateKey handles POST /api/v1/auth/keys (keyadder only). The plaintext
// key appears in this response and nowhere else.
func (ah *AuthHandler) CreateKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", err)
		return
	}
	scope, err := domain.ParseAPIScope(req.Scope)
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "invalid_payload", err)
		return
	}
	collectorID := uuid.New()
	if req.CollectorID != nil {
		collectorID = *req.CollectorID
	}
	var createdBy *int64
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		createdBy = &rd.KeyID
	}
	rawKey, record, err := ah.authService.CreateKey(c.Request.Context(), scope, collectorID, req.ExpiresAt, createdBy)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"key":          rawKey,
		"keytag":       record.Keytag,
		"scope":        record.Scope,
		"collector_id": record.CollectorID,
		"expires_at":   record.ExpiresAt,
	})
}

// RotateKey handles POST /api/v1/auth/keys/rotate. Any authenticated key
// may rotate itself.
func (ah *AuthHandler) RotateKey(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	rawKey, record, err := ah.authService.RotateKey(c.Request.Context(), rd.KeyID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"key":        rawKey,
		"keytag":     record.Keytag,
		"expires_at": record.ExpiresAt,
	})
}

// RevokeKey handles DELETE /api/v1/auth/keys/:keytag (keyadder only).
func (ah *AuthHandler) RevokeKey(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := ah.authService.RevokeKey(c.Request.Context(), c.Param("keytag"), rd.KeyID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListKeys handles GET /api/v1/auth/keys (keyadder only).
func (ah *AuthHandler) ListKeys(c *gin.Context) {
	keys, err := ah.authService.ListKeys(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, keys)
}

// RollbackCollector handles POST /api/v1/auth/rollback/:collector_id
// (admin only). Drops every attribution record of the collector.
func (ah *AuthHandler) RollbackCollector(c *gin.Context) {
	collectorID, err := uuid.Parse(c.Param("collector_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	removed, err := ah.integration.RollbackCollector(c.Request.Context(), collectorID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"removed_touches": removed})
}
