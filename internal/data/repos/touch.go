package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type TouchRepo interface {
	// Upsert refreshes the timestamp when the (entity, collector) pair
	// is already recorded and inserts the record otherwise.
	Upsert(ctx context.Context, tx *gorm.DB, rec *domain.TouchRecord) error
	RecentByEntity(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) ([]domain.TouchRecord, error)
	// EvictBeyond drops the oldest records of the entity until at most
	// keep remain.
	EvictBeyond(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64, keep int) error
	DeleteByEntity(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) error
	DeleteByCollector(ctx context.Context, tx *gorm.DB, collectorID uuid.UUID) ([]domain.TouchRecord, error)
}

type touchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTouchRepo(db *gorm.DB, baseLog *logger.Logger) TouchRepo {
	repoLog := baseLog.With("repo", "TouchRepo")
	return &touchRepo{db: db, log: repoLog}
}

func (tr *touchRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return tr.db
}

func (tr *touchRepo) Upsert(ctx context.Context, tx *gorm.DB, rec *domain.TouchRecord) error {
	return tr.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "entity_kind"},
				{Name: "entity_id"},
				{Name: "collector_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"touched_at": rec.TouchedAt,
				"key_id":     rec.KeyID,
			}),
		}).
		Create(rec).Error
}

func (tr *touchRepo) RecentByEntity(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) ([]domain.TouchRecord, error) {
	var results []domain.TouchRecord
	err := tr.conn(tx).WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("touched_at DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *touchRepo) EvictBeyond(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64, keep int) error {
	records, err := tr.RecentByEntity(ctx, tx, kind, entityID)
	if err != nil {
		return err
	}
	if len(records) <= keep {
		return nil
	}
	stale := make([]int64, 0, len(records)-keep)
	for _, rec := range records[keep:] {
		stale = append(stale, rec.ID)
	}
	return tr.conn(tx).WithContext(ctx).
		Where("id IN ?", stale).
		Delete(&domain.TouchRecord{}).Error
}

func (tr *touchRepo) DeleteByEntity(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64) error {
	return tr.conn(tx).WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Delete(&domain.TouchRecord{}).Error
}

func (tr *touchRepo) DeleteByCollector(ctx context.Context, tx *gorm.DB, collectorID uuid.UUID) ([]domain.TouchRecord, error) {
	conn := tr.conn(tx).WithContext(ctx)
	var removed []domain.TouchRecord
	if err := conn.Where("collector_id = ?", collectorID).Find(&removed).Error; err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := conn.Where("collector_id = ?", collectorID).Delete(&domain.TouchRecord{}).Error; err != nil {
		return nil, err
	}
	return removed, nil
}
