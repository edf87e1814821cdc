package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/requestdata"
	"github.com/parlatrack/backend/internal/services"
)

const apiKeyHeader = "X-API-Key"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireScope authenticates the X-API-Key header and rejects keys whose
// scope is not in the allow list. Admin implies collector access.
func (am *AuthMiddleware) RequireScope(scopes ...domain.APIScope) gin.HandlerFunc {
	allowed := map[domain.APIScope]bool{}
	for _, scope := range scopes {
		allowed[scope] = true
	}
	return func(c *gin.Context) {
		rawKey := c.GetHeader(apiKeyHeader)
		if rawKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing api key"})
			return
		}
		record, err := am.authService.ValidateKey(c.Request.Context(), rawKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		if !allowed[record.Scope] && !(record.Scope == domain.ScopeAdmin && allowed[domain.ScopeCollector]) {
			am.log.Warn("scope rejected", "keytag", record.Keytag, "scope", string(record.Scope))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			KeyID:       record.ID,
			Scope:       record.Scope,
			CollectorID: record.CollectorID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
