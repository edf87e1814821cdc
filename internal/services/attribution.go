package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

// AttributionService keeps the bounded per-entity log of collector
// touches. The log is advisory; failures here are reported but callers
// decide whether to fail the surrounding write.
type AttributionService interface {
	RecordTouch(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64, collectorID uuid.UUID, keyID int64) error
	RecentTouches(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) ([]domain.TouchRecord, error)
	ForgetEntity(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) error
	// ForgetCollector drops every touch of a collector and returns the
	// removed records so an admin rollback can inspect what the
	// collector had claimed.
	ForgetCollector(ctx context.Context, tx *gorm.DB, collectorID uuid.UUID) ([]domain.TouchRecord, error)
}

type attributionService struct {
	repos    *repos.Repos
	capacity int
	now      func() time.Time
	log      *logger.Logger
}

func NewAttributionService(r *repos.Repos, capacity int, baseLog *logger.Logger) AttributionService {
	svcLog := baseLog.With("service", "AttributionService")
	if capacity < 1 {
		capacity = 1
	}
	return &attributionService{repos: r, capacity: capacity, now: time.Now, log: svcLog}
}

func (as *attributionService) RecordTouch(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64, collectorID uuid.UUID, keyID int64) error {
	rec := &domain.TouchRecord{
		EntityKind:  kind,
		EntityID:    entityID,
		CollectorID: collectorID,
		KeyID:       keyID,
		TouchedAt:   as.now().UTC(),
	}
	if err := as.repos.Touch.Upsert(ctx, tx, rec); err != nil {
		return err
	}
	return as.repos.Touch.EvictBeyond(ctx, tx, kind, entityID, as.capacity)
}

func (as *attributionService) RecentTouches(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) ([]domain.TouchRecord, error) {
	return as.repos.Touch.RecentByEntity(ctx, tx, kind, entityID)
}

func (as *attributionService) ForgetEntity(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) error {
	return as.repos.Touch.DeleteByEntity(ctx, tx, kind, entityID)
}

func (as *attributionService) ForgetCollector(ctx context.Context, tx *gorm.DB, collectorID uuid.UUID) ([]domain.TouchRecord, error) {
	removed, err := as.repos.Touch.DeleteByCollector(ctx, tx, collectorID)
	if err != nil {
		return nil, err
	}
	as.log.Info("collector touches dropped", "collector_id", collectorID.String(), "count", len(removed))
	return removed, nil
}
