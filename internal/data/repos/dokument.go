package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type DokumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, d *domain.Dokument) error
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Dokument, error)
	GetByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (*domain.Dokument, error)
	GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*domain.Dokument, error)
	IDByDrucksnr(ctx context.Context, tx *gorm.DB, drucksnr string) (int64, bool, error)
	UpdateScalars(ctx context.Context, tx *gorm.DB, d *domain.Dokument) error
	SetAutoren(ctx context.Context, tx *gorm.DB, dokumentID int64, autorIDs []int64) error
}

type dokumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDokumentRepo(db *gorm.DB, baseLog *logger.Logger) DokumentRepo {
	repoLog := baseLog.With("repo", "DokumentRepo")
	return &dokumentRepo{db: db, log: repoLog}
}

func (dr *dokumentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return dr.db
}

func (dr *dokumentRepo) Create(ctx context.Context, tx *gorm.DB, d *domain.Dokument) error {
	return dr.conn(tx).WithContext(ctx).
		Omit("Autoren").
		Create(d).Error
}

func (dr *dokumentRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Dokument, error) {
	return dr.one(dr.conn(tx).WithContext(ctx).Where("id = ?", id))
}

func (dr *dokumentRepo) GetByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (*domain.Dokument, error) {
	return dr.one(dr.conn(tx).WithContext(ctx).Where("api_id = ?", apiID))
}

func (dr *dokumentRepo) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*domain.Dokument, error) {
	return dr.one(dr.conn(tx).WithContext(ctx).Where("hash = ?", hash))
}

func (dr *dokumentRepo) one(query *gorm.DB) (*domain.Dokument, error) {
	var result domain.Dokument
	err := query.Preload("Autoren").Order("id").First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (dr *dokumentRepo) IDByDrucksnr(ctx context.Context, tx *gorm.DB, drucksnr string) (int64, bool, error) {
	var ids []int64
	err := dr.conn(tx).WithContext(ctx).
		Model(&domain.Dokument{}).
		Where("drucksnr = ?", drucksnr).
		Order("id").
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

func (dr *dokumentRepo) UpdateScalars(ctx context.Context, tx *gorm.DB, d *domain.Dokument) error {
	return dr.conn(tx).WithContext(ctx).
		Model(&domain.Dokument{ID: d.ID}).
		Updates(map[string]interface{}{
			"api_id":          d.ApiID,
			"hash":            d.Hash,
			"typ":             d.Typ,
			"titel":           d.Titel,
			"kurztitel":       d.Kurztitel,
			"vorwort":         d.Vorwort,
			"volltext":        d.Volltext,
			"zusammenfassung": d.Zusammenfassung,
			"drucksnr":        d.Drucksnr,
			"link":            d.Link,
			"meinung":         d.Meinung,
			"schlagworte":     d.Schlagworte,
			"vorgaenger_id":   d.VorgaengerID,
			"zp_erstellt":     d.ZpErstellt,
			"zp_referenz":     d.ZpReferenz,
			"zp_modifiziert":  d.ZpModifiziert,
		}).Error
}

func (dr *dokumentRepo) SetAutoren(ctx context.Context, tx *gorm.DB, dokumentID int64, autorIDs []int64) error {
	conn := dr.conn(tx).WithContext(ctx)
	if err := conn.Exec("DELETE FROM rel_dok_autor WHERE dokument_id = ?", dokumentID).Error; err != nil {
		return err
	}
	for _, autorID := range autorIDs {
		if err := conn.Exec("INSERT INTO rel_dok_autor (dokument_id, autor_id) VALUES (?, ?)", dokumentID, autorID).Error; err != nil {
			return err
		}
	}
	return nil
}
