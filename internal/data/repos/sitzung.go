package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type SitzungFilter struct {
	Parlament   *domain.Parlament
	Wahlperiode *int32
	GremiumName *string
}

type SitzungRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *domain.Sitzung) error
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Sitzung, error)
	GetByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (*domain.Sitzung, error)
	IDByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (int64, bool, error)
	IDsByNaturalKey(ctx context.Context, tx *gorm.DB, gremiumID int64, nummer int32) ([]int64, error)
	UpdateScalars(ctx context.Context, tx *gorm.DB, s *domain.Sitzung) error
	ReplaceTops(ctx context.Context, tx *gorm.DB, sitzungID int64, tops []domain.Top) error
	SetDokumente(ctx context.Context, tx *gorm.DB, sitzungID int64, dokIDs []int64) error
	SetExperten(ctx context.Context, tx *gorm.DB, sitzungID int64, autorIDs []int64) error
	Filter(ctx context.Context, tx *gorm.DB, f SitzungFilter, limit, offset int) ([]*domain.Sitzung, error)
	Delete(ctx context.Context, tx *gorm.DB, id int64) error
}

type sitzungRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSitzungRepo(db *gorm.DB, baseLog *logger.Logger) SitzungRepo {
	repoLog := baseLog.With("repo", "SitzungRepo")
	return &sitzungRepo{db: db, log: repoLog}
}

func (sr *sitzungRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return sr.db
}

func (sr *sitzungRepo) Create(ctx context.Context, tx *gorm.DB, s *domain.Sitzung) error {
	return sr.conn(tx).WithContext(ctx).
		Omit("Tops", "Dokumente", "Experten", "Gremium").
		Create(s).Error
}

func (sr *sitzungRepo) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Gremium").
		Preload("Tops").
		Preload("Tops.Dokumente").
		Preload("Tops.Dokumente.Autoren").
		Preload("Dokumente").
		Preload("Dokumente.Autoren").
		Preload("Experten")
}

func (sr *sitzungRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Sitzung, error) {
	var result domain.Sitzung
	err := sr.preloaded(sr.conn(tx).WithContext(ctx)).
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

func (sr *sitzungRepo) GetByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (*domain.Sitzung, error) {
	var result domain.Sitzung
	err := sr.preloaded(sr.conn(tx).WithContext(ctx)).
		Where("api_id = ?", apiID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *sitzungRepo) IDByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (int64, bool, error) {
	var ids []int64
	err := sr.conn(tx).WithContext(ctx).
		Model(&domain.Sitzung{}).
		Where("api_id = ?", apiID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (sr *sitzungRepo) IDsByNaturalKey(ctx context.Context, tx *gorm.DB, gremiumID int64, nummer int32) ([]int64, error) {
	var ids []int64
	err := sr.conn(tx).WithContext(ctx).
		Model(&domain.Sitzung{}).
		Where("gremium_id = ? AND nummer = ?", gremiumID, nummer).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (sr *sitzungRepo) UpdateScalars(ctx context.Context, tx *gorm.DB, s *domain.Sitzung) error {
	return sr.conn(tx).WithContext(ctx).
		Model(&domain.Sitzung{ID: s.ID}).
		Updates(map[string]interface{}{
			"api_id":     s.ApiID,
			"titel":      s.Titel,
			"termin":     s.Termin,
			"gremium_id": s.GremiumID,
			"nummer":     s.Nummer,
			"public":     s.Public,
			"link":       s.Link,
		}).Error
}

func (sr *sitzungRepo) ReplaceTops(ctx context.Context, tx *gorm.DB, sitzungID int64, tops []domain.Top) error {
	conn := sr.conn(tx).WithContext(ctx)
	var topIDs []int64
	if err := conn.Model(&domain.Top{}).Where("sitzung_id = ?", sitzungID).Pluck("id", &topIDs).Error; err != nil {
		return err
	}
	if len(topIDs) > 0 {
		if err := conn.Exec("DELETE FROM rel_top_dokument WHERE top_id IN ?", topIDs).Error; err != nil {
			return err
		}
		if err := conn.Where("id IN ?", topIDs).Delete(&domain.Top{}).Error; err != nil {
			return err
		}
	}
	for i := range tops {
		tops[i].ID = 0
		tops[i].SitzungID = sitzungID
		dokumente := tops[i].Dokumente
		tops[i].Dokumente = nil
		if err := conn.Create(&tops[i]).Error; err != nil {
			return err
		}
		for _, dok := range dokumente {
			if err := conn.Exec("INSERT INTO rel_top_dokument (top_id, dokument_id) VALUES (?, ?)", tops[i].ID, dok.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (sr *sitzungRepo) SetDokumente(ctx context.Context, tx *gorm.DB, sitzungID int64, dokIDs []int64) error {
	return sr.setRelation(ctx, tx, "rel_sitzung_dokument", "dokument_id", sitzungID, dokIDs)
}

func (sr *sitzungRepo) SetExperten(ctx context.Context, tx *gorm.DB, sitzungID int64, autorIDs []int64) error {
	return sr.setRelation(ctx, tx, "rel_sitzung_experten", "autor_id", sitzungID, autorIDs)
}

func (sr *sitzungRepo) setRelation(ctx context.Context, tx *gorm.DB, table, column string, sitzungID int64, ids []int64) error {
	conn := sr.conn(tx).WithContext(ctx)
	if err := conn.Exec("DELETE FROM "+table+" WHERE sitzung_id = ?", sitzungID).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := conn.Exec("INSERT INTO "+table+" (sitzung_id, "+column+") VALUES (?, ?)", sitzungID, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (sr *sitzungRepo) Filter(ctx context.Context, tx *gorm.DB, f SitzungFilter, limit, offset int) ([]*domain.Sitzung, error) {
	query := sr.preloaded(sr.conn(tx).WithContext(ctx)).
		Model(&domain.Sitzung{}).
		Joins("INNER JOIN gremium ON gremium.id = sitzung.gremium_id")
	if f.Parlament != nil {
		query = query.Where("gremium.parlament = ?", *f.Parlament)
	}
	if f.Wahlperiode != nil {
		query = query.Where("gremium.wahlperiode = ?", *f.Wahlperiode)
	}
	if f.GremiumName != nil {
		query = query.Where("gremium.name = ?", *f.GremiumName)
	}
	var results []*domain.Sitzung
	if err := query.Order("sitzung.id").Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sitzungRepo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	conn := sr.conn(tx).WithContext(ctx)
	var topIDs []int64
	if err := conn.Model(&domain.Top{}).Where("sitzung_id = ?", id).Pluck("id", &topIDs).Error; err != nil {
		return err
	}
	if len(topIDs) > 0 {
		if err := conn.Exec("DELETE FROM rel_top_dokument WHERE top_id IN ?", topIDs).Error; err != nil {
			return err
		}
		if err := conn.Where("id IN ?", topIDs).Delete(&domain.Top{}).Error; err != nil {
			return err
		}
	}
	if err := conn.Exec("DELETE FROM rel_sitzung_dokument WHERE sitzung_id = ?", id).Error; err != nil {
		return err
	}
	if err := conn.Exec("DELETE FROM rel_sitzung_experten WHERE sitzung_id = ?", id).Error; err != nil {
		return err
	}
	return conn.Delete(&domain.Sitzung{}, id).Error
}
