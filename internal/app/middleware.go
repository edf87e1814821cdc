package app

import (
	"github.com/parlatrack/backend/internal/middleware"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

func wireMiddleware(log *logger.Logger, serviceset Services) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(log, serviceset.Auth)
}
