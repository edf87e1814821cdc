package app

import (
	"github.com/gin-gonic/gin"

	"github.com/parlatrack/backend/internal/middleware"
	"github.com/parlatrack/backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		VorgangHandler: handlerset.Vorgang,
		SitzungHandler: handlerset.Sitzung,
		AuthHandler:    handlerset.Auth,
		HealthHandler:  handlerset.Health,
		AuthMiddleware: authMiddleware,
		OtelEnabled:    cfg.OtelEnabled,
	})
}
