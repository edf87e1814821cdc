package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

type StationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *domain.Station) error
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Station, error)
	IDsByVorgang(ctx context.Context, tx *gorm.DB, vorgangID int64) ([]int64, error)
	// MatchIDs finds stations of the procedure matching the incoming
	// station's type and committee. A station with no committee on
	// either side matches on type alone.
	MatchIDs(ctx context.Context, tx *gorm.DB, vorgangID int64, typ domain.Stationstyp, gremiumID *int64) ([]int64, error)
	UpdateScalars(ctx context.Context, tx *gorm.DB, s *domain.Station) error
	SetDokumente(ctx context.Context, tx *gorm.DB, stationID int64, dokIDs []int64) error
	SetStellungnahmen(ctx context.Context, tx *gorm.DB, stationID int64, dokIDs []int64) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []int64) error
}

type stationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStationRepo(db *gorm.DB, baseLog *logger.Logger) StationRepo {
	repoLog := baseLog.With("repo", "StationRepo")
	return &stationRepo{db: db, log: repoLog}
}

func (sr *stationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return sr.db
}

func (sr *stationRepo) Create(ctx context.Context, tx *gorm.DB, s *domain.Station) error {
	return sr.conn(tx).WithContext(ctx).
		Omit("Dokumente", "Stellungnahmen", "Gremium").
		Create(s).Error
}

func (sr *stationRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Station, error) {
	var result domain.Station
	err := sr.conn(tx).WithContext(ctx).
		Preload("Gremium").
		Preload("Dokumente").
		Preload("Dokumente.Autoren").
		Preload("Stellungnahmen").
		Preload("Stellungnahmen.Autoren").
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

func (sr *stationRepo) IDsByVorgang(ctx context.Context, tx *gorm.DB, vorgangID int64) ([]int64, error) {
	var ids []int64
	err := sr.conn(tx).WithContext(ctx).
		Model(&domain.Station{}).
		Where("vorgang_id = ?", vorgangID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (sr *stationRepo) MatchIDs(ctx context.Context, tx *gorm.DB, vorgangID int64, typ domain.Stationstyp, gremiumID *int64) ([]int64, error) {
	query := sr.conn(tx).WithContext(ctx).
		Model(&domain.Station{}).
		Where("vorgang_id = ? AND typ = ?", vorgangID, typ)
	if gremiumID != nil {
		query = query.Where("gremium_id IS NULL OR gremium_id = ?", *gremiumID)
	}
	var ids []int64
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (sr *stationRepo) UpdateScalars(ctx context.Context, tx *gorm.DB, s *domain.Station) error {
	return sr.conn(tx).WithContext(ctx).
		Model(&domain.Station{ID: s.ID}).
		Updates(map[string]interface{}{
			"api_id":           s.ApiID,
			"typ":              s.Typ,
			"titel":            s.Titel,
			"parlament":        s.Parlament,
			"gremium_id":       s.GremiumID,
			"gremium_federf":   s.GremiumFederf,
			"zp_start":         s.ZpStart,
			"zp_modifiziert":   s.ZpModifiziert,
			"trojanergefahr":   s.Trojanergefahr,
			"link":             s.Link,
			"additional_links": s.AdditionalLinks,
			"schlagworte":      s.Schlagworte,
		}).Error
}

func (sr *stationRepo) SetDokumente(ctx context.Context, tx *gorm.DB, stationID int64, dokIDs []int64) error {
	return sr.setRelation(ctx, tx, "rel_station_dokument", stationID, dokIDs)
}

func (sr *stationRepo) SetStellungnahmen(ctx context.Context, tx *gorm.DB, stationID int64, dokIDs []int64) error {
	return sr.setRelation(ctx, tx, "rel_station_stln", stationID, dokIDs)
}

func (sr *stationRepo) setRelation(ctx context.Context, tx *gorm.DB, table string, stationID int64, dokIDs []int64) error {
	conn := sr.conn(tx).WithContext(ctx)
	if err := conn.Exec("DELETE FROM "+table+" WHERE station_id = ?", stationID).Error; err != nil {
		return err
	}
	for _, dokID := range dokIDs {
		if err := conn.Exec("INSERT INTO "+table+" (station_id, dokument_id) VALUES (?, ?)", stationID, dokID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (sr *stationRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	conn := sr.conn(tx).WithContext(ctx)
	if err := conn.Exec("DELETE FROM rel_station_dokument WHERE station_id IN ?", ids).Error; err != nil {
		return err
	}
	if err := conn.Exec("DELETE FROM rel_station_stln WHERE station_id IN ?", ids).Error; err != nil {
		return err
	}
	return conn.Where("id IN ?", ids).Delete(&domain.Station{}).Error
}
