package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type GremiumRepo interface {
	Create(ctx context.Context, tx *gorm.DB, g *domain.Gremium) error
	FindExact(ctx context.Context, tx *gorm.DB, parlament domain.Parlament, wahlperiode int32, name string) (*domain.Gremium, error)
	ByParlament(ctx context.Context, tx *gorm.DB, parlament domain.Parlament) ([]domain.Gremium, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Gremium, error)
}

type gremiumRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGremiumRepo(db *gorm.DB, baseLog *logger.Logger) GremiumRepo {
	repoLog := baseLog.With("repo", "GremiumRepo")
	return &gremiumRepo{db: db, log: repoLog}
}

func (gr *gremiumRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return gr.db
}

func (gr *gremiumRepo) Create(ctx context.Context, tx *gorm.DB, g *domain.Gremium) error {
	return gr.conn(tx).WithContext(ctx).Create(g).Error
}

func (gr *gremiumRepo) FindExact(ctx context.Context, tx *gorm.DB, parlament domain.Parlament, wahlperiode int32, name string) (*domain.Gremium, error) {
	var results []domain.Gremium
	err := gr.conn(tx).WithContext(ctx).
		Where("parlament = ? AND wahlperiode = ? AND name = ?", parlament, wahlperiode, name).
		Order("id").
		Limit(1).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (gr *gremiumRepo) ByParlament(ctx context.Context, tx *gorm.DB, parlament domain.Parlament) ([]domain.Gremium, error) {
	var results []domain.Gremium
	err := gr.conn(tx).WithContext(ctx).
		Where("parlament = ?", parlament).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *gremiumRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Gremium, error) {
	var results []domain.Gremium
	err := gr.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}
