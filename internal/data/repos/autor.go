package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type AutorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, a *domain.Autor) error
	// FindExact matches on person, organisation and fachgebiet,
	// treating a NULL person or fachgebiet on either side as equal
	// only to NULL.
	FindExact(ctx context.Context, tx *gorm.DB, person *string, organisation string, fachgebiet *string) (*domain.Autor, error)
	All(ctx context.Context, tx *gorm.DB) ([]domain.Autor, error)
	UpdateDetails(ctx context.Context, tx *gorm.DB, id int64, fachgebiet, lobbyregister *string) error
}

type autorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAutorRepo(db *gorm.DB, baseLog *logger.Logger) AutorRepo {
	repoLog := baseLog.With("repo", "AutorRepo")
	return &autorRepo{db: db, log: repoLog}
}

func (ar *autorRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}

func (ar *autorRepo) Create(ctx context.Context, tx *gorm.DB, a *domain.Autor) error {
	return ar.conn(tx).WithContext(ctx).Create(a).Error
}

func (ar *autorRepo) FindExact(ctx context.Context, tx *gorm.DB, person *string, organisation string, fachgebiet *string) (*domain.Autor, error) {
	query := ar.conn(tx).WithContext(ctx).
		Model(&domain.Autor{}).
		Where("organisation = ?", organisation)
	if person == nil {
		query = query.Where("person IS NULL")
	} else {
		query = query.Where("person = ?", *person)
	}
	if fachgebiet == nil {
		query = query.Where("fachgebiet IS NULL")
	} else {
		query = query.Where("fachgebiet = ?", *fachgebiet)
	}
	var results []domain.Autor
	if err := query.Order("id").Limit(1).Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (ar *autorRepo) All(ctx context.Context, tx *gorm.DB) ([]domain.Autor, error) {
	var results []domain.Autor
	if err := ar.conn(tx).WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *autorRepo) UpdateDetails(ctx context.Context, tx *gorm.DB, id int64, fachgebiet, lobbyregister *string) error {
	updates := map[string]interface{}{}
	if fachgebiet != nil {
		updates["fachgebiet"] = *fachgebiet
	}
	if lobbyregister != nil {
		updates["lobbyregister"] = *lobbyregister
	}
	if len(updates) == 0 {
		return nil
	}
	return ar.conn(tx).WithContext(ctx).
		Model(&domain.Autor{ID: id}).
		Updates(updates).Error
}
