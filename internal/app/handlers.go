package app

import (
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/handlers"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type Handlers struct {
	Vorgang *handlers.VorgangHandler
	Sitzung *handlers.SitzungHandler
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Vorgang: handlers.NewVorgangHandler(log, serviceset.Integration, serviceset.Query),
		Sitzung: handlers.NewSitzungHandler(log, serviceset.Integration, serviceset.Query),
		Auth:    handlers.NewAuthHandler(log, serviceset.Auth, serviceset.Integration),
		Health:  handlers.NewHealthHandler(db),
	}
}
