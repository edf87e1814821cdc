package app

import (
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/merge"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Resolver    services.ResolverService
	Attribution services.AttributionService
	Integration services.IntegrationService
	Query       services.QueryService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet *repos.Repos) Services {
	notifier := services.NewLogNotifier(log)
	resolver := services.NewResolverService(reposet, merge.TrigramScorer{}, services.ResolverThresholds{
		Title:  cfg.TitleSimilarity,
		Author: cfg.AuthorSimilarity,
	}, notifier, log)
	attribution := services.NewAttributionService(reposet, cfg.TouchCapacity, log)
	integration := services.NewIntegrationService(db, reposet, resolver, attribution, cfg.RetryAttempts, log)
	query := services.NewQueryService(reposet, attribution, log)
	auth := services.NewAuthService(db, reposet, log)

	return Services{
		Auth:        auth,
		Resolver:    resolver,
		Attribution: attribution,
		Integration: integration,
		Query:       query,
	}
}
