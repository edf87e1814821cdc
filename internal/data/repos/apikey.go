package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type ApiKeyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, k *domain.ApiKey) error
	GetByKeytag(ctx context.Context, tx *gorm.DB, keytag string) (*domain.ApiKey, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.ApiKey, error)
	List(ctx context.Context, tx *gorm.DB, includeDeleted bool) ([]domain.ApiKey, error)
	MarkDeleted(ctx context.Context, tx *gorm.DB, id, deletedBy int64) error
	SetRotatedFor(ctx context.Context, tx *gorm.DB, id, successor int64) error
	TouchLastUsed(ctx context.Context, tx *gorm.DB, id int64, at time.Time) error
}

type apiKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApiKeyRepo(db *gorm.DB, baseLog *logger.Logger) ApiKeyRepo {
	repoLog := baseLog.With("repo", "ApiKeyRepo")
	return &apiKeyRepo{db: db, log: repoLog}
}

func (kr *apiKeyRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return kr.db
}

func (kr *apiKeyRepo) Create(ctx context.Context, tx *gorm.DB, k *domain.ApiKey) error {
	return kr.conn(tx).WithContext(ctx).Create(k).Error
}

func (kr *apiKeyRepo) GetByKeytag(ctx context.Context, tx *gorm.DB, keytag string) (*domain.ApiKey, error) {
	var result domain.ApiKey
	err := kr.conn(tx).WithContext(ctx).
		Where("keytag = ?", keytag).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (kr *apiKeyRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.ApiKey, error) {
	var result domain.ApiKey
	err := kr.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (kr *apiKeyRepo) List(ctx context.Context, tx *gorm.DB, includeDeleted bool) ([]domain.ApiKey, error) {
	query := kr.conn(tx).WithContext(ctx).Model(&domain.ApiKey{})
	if !includeDeleted {
		query = query.Where("deleted_by IS NULL")
	}
	var results []domain.ApiKey
	if err := query.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (kr *apiKeyRepo) MarkDeleted(ctx context.Context, tx *gorm.DB, id, deletedBy int64) error {
	return kr.conn(tx).WithContext(ctx).
		Model(&domain.ApiKey{ID: id}).
		Update("deleted_by", deletedBy).Error
}

func (kr *apiKeyRepo) SetRotatedFor(ctx context.Context, tx *gorm.DB, id, successor int64) error {
	return kr.conn(tx).WithContext(ctx).
		Model(&domain.ApiKey{ID: id}).
		Update("rotated_for", successor).Error
}

func (kr *apiKeyRepo) TouchLastUsed(ctx context.Context, tx *gorm.DB, id int64, at time.Time) error {
	return kr.conn(tx).WithContext(ctx).
		Model(&domain.ApiKey{ID: id}).
		Update("last_used_at", at).Error
}
