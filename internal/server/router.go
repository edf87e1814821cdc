package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/handlers"
	"github.com/parlatrack/backend/internal/middleware"
)

type RouterConfig struct {
	VorgangHandler *handlers.VorgangHandler
	SitzungHandler *handlers.SitzungHandler
	AuthHandler    *handlers.AuthHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	OtelEnabled    bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OtelEnabled {
		router.Use(otelgin.Middleware("parlatrack-backend"))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-API-Key"},
		ExposeHeaders: []string{"Content-Type"},
	}))

	router.GET("/healthcheck", cfg.HealthHandler.Check)

	api := router.Group("/api/v1")

	// read path is public
	api.GET("/vorgang", cfg.VorgangHandler.List)
	api.GET("/vorgang/:vorgang_id", cfg.VorgangHandler.Get)
	api.GET("/sitzung", cfg.SitzungHandler.List)
	api.GET("/sitzung/:sitzung_id", cfg.SitzungHandler.Get)

	// collectors submit, admin implies collector
	collect := api.Group("/")
	collect.Use(cfg.AuthMiddleware.RequireScope(domain.ScopeCollector))
	collect.PUT("/vorgang", cfg.VorgangHandler.Submit)
	collect.PUT("/sitzung", cfg.SitzungHandler.Submit)

	admin := api.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireScope(domain.ScopeAdmin))
	admin.DELETE("/vorgang/:vorgang_id", cfg.VorgangHandler.Delete)
	admin.DELETE("/sitzung/:sitzung_id", cfg.SitzungHandler.Delete)
	admin.GET("/vorgang/:vorgang_id/touches", cfg.VorgangHandler.Touches)
	admin.POST("/auth/rollback/:collector_id", cfg.AuthHandler.RollbackCollector)

	keyadder := api.Group("/auth")
	keyadder.Use(cfg.AuthMiddleware.RequireScope(domain.ScopeKeyAdder))
	keyadder.POST("/keys", cfg.AuthHandler.CreateKey)
	keyadder.GET("/keys", cfg.AuthHandler.ListKeys)
	keyadder.DELETE("/keys/:keytag", cfg.AuthHandler.RevokeKey)

	rotate := api.Group("/auth")
	rotate.Use(cfg.AuthMiddleware.RequireScope(domain.ScopeCollector, domain.ScopeAdmin, domain.ScopeKeyAdder))
	rotate.POST("/keys/rotate", cfg.AuthHandler.RotateKey)

	return router
}
