package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

// VorwortRow pairs a procedure id with the preamble of one of its
// initiative drafts; input to the fuzzy resolution fallback.
type VorwortRow struct {
	VorgangID int64
	Vorwort   string
}

// VorgangFilter is the read-path parameter set.
type VorgangFilter struct {
	Wahlperiode *int32
	Typ         *domain.Vorgangstyp
	Parlament   *domain.Parlament
	InitPerson  *string
	InitOrg     *string
	InitFach    *string
	Since       *time.Time
	Until       *time.Time
}

type VorgangRepo interface {
	Create(ctx context.Context, tx *gorm.DB, v *domain.Vorgang) error
	GetByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (*domain.Vorgang, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Vorgang, error)
	LockByID(ctx context.Context, tx *gorm.DB, id int64) error
	IDByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (int64, bool, error)
	IDsByNaturalKey(ctx context.Context, tx *gorm.DB, wp int32, typ domain.Vorgangstyp, idents []domain.VgIdent) ([]int64, error)
	EntwurfVorworte(ctx context.Context, tx *gorm.DB, wp int32, typ domain.Vorgangstyp) ([]VorwortRow, error)
	UpdateScalars(ctx context.Context, tx *gorm.DB, v *domain.Vorgang) error
	ReplaceIdents(ctx context.Context, tx *gorm.DB, vorgangID int64, idents []domain.VgIdent) error
	SetInitiatoren(ctx context.Context, tx *gorm.DB, vorgangID int64, autorIDs []int64) error
	Filter(ctx context.Context, tx *gorm.DB, f VorgangFilter, limit, offset int) ([]*domain.Vorgang, error)
	Delete(ctx context.Context, tx *gorm.DB, id int64) error
}

type vorgangRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVorgangRepo(db *gorm.DB, baseLog *logger.Logger) VorgangRepo {
	repoLog := baseLog.With("repo", "VorgangRepo")
	return &vorgangRepo{db: db, log: repoLog}
}

func (vr *vorgangRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return vr.db
}

func (vr *vorgangRepo) Create(ctx context.Context, tx *gorm.DB, v *domain.Vorgang) error {
	return vr.conn(tx).WithContext(ctx).
		Omit("Stationen", "Initiatoren", "Ids").
		Create(v).Error
}

func (vr *vorgangRepo) GetByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (*domain.Vorgang, error) {
	var result domain.Vorgang
	err := vr.preloaded(vr.conn(tx).WithContext(ctx)).
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

func (vr *vorgangRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Vorgang, error) {
	var result domain.Vorgang
	err := vr.preloaded(vr.conn(tx).WithContext(ctx)).
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

func (vr *vorgangRepo) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ids").
		Preload("Initiatoren").
		Preload("Stationen").
		Preload("Stationen.Gremium").
		Preload("Stationen.Dokumente").
		Preload("Stationen.Dokumente.Autoren").
		Preload("Stationen.Stellungnahmen").
		Preload("Stationen.Stellungnahmen.Autoren")
}

// LockByID takes a row lock on the procedure so two submissions racing on
// the same target serialize at the storage layer. No-op on dialects that do
// not support FOR UPDATE (the in-memory test database is single-writer).
func (vr *vorgangRepo) LockByID(ctx context.Context, tx *gorm.DB, id int64) error {
	conn := vr.conn(tx)
	if conn.Dialector.Name() != "postgres" {
		return nil
	}
	var locked int64
	return conn.WithContext(ctx).
		Raw("SELECT id FROM vorgang WHERE id = ? FOR UPDATE", id).
		Scan(&locked).Error
}

func (vr *vorgangRepo) IDByApiID(ctx context.Context, tx *gorm.DB, apiID uuid.UUID) (int64, bool, error) {
	var ids []int64
	err := vr.conn(tx).WithContext(ctx).
		Model(&domain.Vorgang{}).
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

func (vr *vorgangRepo) IDsByNaturalKey(ctx context.Context, tx *gorm.DB, wp int32, typ domain.Vorgangstyp, idents []domain.VgIdent) ([]int64, error) {
	if len(idents) == 0 {
		return nil, nil
	}
	cond := "1 = 0"
	args := make([]interface{}, 0, len(idents)*2)
	for _, ident := range idents {
		cond += " OR (vg_ident.ident = ? AND vg_ident.typ = ?)"
		args = append(args, ident.Ident, ident.Typ)
	}
	var ids []int64
	err := vr.conn(tx).WithContext(ctx).
		Model(&domain.Vorgang{}).
		Distinct("vorgang.id").
		Joins("INNER JOIN vg_ident ON vg_ident.vorgang_id = vorgang.id").
		Where("vorgang.wahlperiode = ? AND vorgang.typ = ?", wp, typ).
		Where("("+cond+")", args...).
		Order("vorgang.id").
		Pluck("vorgang.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// EntwurfVorworte returns the preambles of initiative drafts of every
// procedure in the given working period and type, the candidate set for
// fuzzy title resolution.
func (vr *vorgangRepo) EntwurfVorworte(ctx context.Context, tx *gorm.DB, wp int32, typ domain.Vorgangstyp) ([]VorwortRow, error) {
	var rows []VorwortRow
	err := vr.conn(tx).WithContext(ctx).
		Table("dokument").
		Select("station.vorgang_id AS vorgang_id, dokument.vorwort AS vorwort").
		Joins("INNER JOIN rel_station_dokument rsd ON rsd.dokument_id = dokument.id").
		Joins("INNER JOIN station ON station.id = rsd.station_id").
		Joins("INNER JOIN vorgang ON vorgang.id = station.vorgang_id").
		Where("vorgang.wahlperiode = ? AND vorgang.typ = ?", wp, typ).
		Where("dokument.typ IN ?", []domain.Doktyp{domain.DoktypEntwurf, domain.DoktypPreparlEntwurf}).
		Where("dokument.vorwort IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (vr *vorgangRepo) UpdateScalars(ctx context.Context, tx *gorm.DB, v *domain.Vorgang) error {
	return vr.conn(tx).WithContext(ctx).
		Model(&domain.Vorgang{ID: v.ID}).
		Select("titel", "kurztitel", "wahlperiode", "typ", "verfassungsaendernd", "links").
		Updates(map[string]interface{}{
			"titel":               v.Titel,
			"kurztitel":           v.Kurztitel,
			"wahlperiode":         v.Wahlperiode,
			"typ":                 v.Typ,
			"verfassungsaendernd": v.Verfassungsaendernd,
			"links":               v.Links,
		}).Error
}

func (vr *vorgangRepo) ReplaceIdents(ctx context.Context, tx *gorm.DB, vorgangID int64, idents []domain.VgIdent) error {
	conn := vr.conn(tx).WithContext(ctx)
	if err := conn.Where("vorgang_id = ?", vorgangID).Delete(&domain.VgIdent{}).Error; err != nil {
		return err
	}
	if len(idents) == 0 {
		return nil
	}
	rows := make([]domain.VgIdent, 0, len(idents))
	for _, ident := range idents {
		rows = append(rows, domain.VgIdent{VorgangID: vorgangID, Ident: ident.Ident, Typ: ident.Typ})
	}
	return conn.Create(&rows).Error
}

func (vr *vorgangRepo) SetInitiatoren(ctx context.Context, tx *gorm.DB, vorgangID int64, autorIDs []int64) error {
	conn := vr.conn(tx).WithContext(ctx)
	if err := conn.Exec("DELETE FROM rel_vorgang_init WHERE vorgang_id = ?", vorgangID).Error; err != nil {
		return err
	}
	for _, autorID := range autorIDs {
		if err := conn.Exec("INSERT INTO rel_vorgang_init (vorgang_id, autor_id) VALUES (?, ?)", vorgangID, autorID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (vr *vorgangRepo) Filter(ctx context.Context, tx *gorm.DB, f VorgangFilter, limit, offset int) ([]*domain.Vorgang, error) {
	query := vr.preloaded(vr.conn(tx).WithContext(ctx)).Model(&domain.Vorgang{})
	if f.Wahlperiode != nil {
		query = query.Where("vorgang.wahlperiode = ?", *f.Wahlperiode)
	}
	if f.Typ != nil {
		query = query.Where("vorgang.typ = ?", *f.Typ)
	}
	if f.Parlament != nil {
		query = query.Where("EXISTS (SELECT 1 FROM station WHERE station.vorgang_id = vorgang.id AND station.parlament = ?)", *f.Parlament)
	}
	if f.InitPerson != nil || f.InitOrg != nil || f.InitFach != nil {
		sub := "EXISTS (SELECT 1 FROM rel_vorgang_init rvi INNER JOIN autor ON autor.id = rvi.autor_id WHERE rvi.vorgang_id = vorgang.id"
		args := []interface{}{}
		if f.InitPerson != nil {
			sub += " AND autor.person = ?"
			args = append(args, *f.InitPerson)
		}
		if f.InitOrg != nil {
			sub += " AND autor.organisation = ?"
			args = append(args, *f.InitOrg)
		}
		if f.InitFach != nil {
			sub += " AND autor.fachgebiet = ?"
			args = append(args, *f.InitFach)
		}
		sub += ")"
		query = query.Where(sub, args...)
	}
	if f.Since != nil {
		query = query.Where("EXISTS (SELECT 1 FROM station WHERE station.vorgang_id = vorgang.id AND station.zp_start >= ?)", *f.Since)
	}
	if f.Until != nil {
		query = query.Where("EXISTS (SELECT 1 FROM station WHERE station.vorgang_id = vorgang.id AND station.zp_start <= ?)", *f.Until)
	}
	var results []*domain.Vorgang
	if err := query.Order("vorgang.id").Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *vorgangRepo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	conn := vr.conn(tx).WithContext(ctx)
	var stationIDs []int64
	if err := conn.Model(&domain.Station{}).Where("vorgang_id = ?", id).Pluck("id", &stationIDs).Error; err != nil {
		return err
	}
	if len(stationIDs) > 0 {
		if err := conn.Exec("DELETE FROM rel_station_dokument WHERE station_id IN ?", stationIDs).Error; err != nil {
			return err
		}
		if err := conn.Exec("DELETE FROM rel_station_stln WHERE station_id IN ?", stationIDs).Error; err != nil {
			return err
		}
		if err := conn.Where("id IN ?", stationIDs).Delete(&domain.Station{}).Error; err != nil {
			return err
		}
	}
	if err := conn.Where("vorgang_id = ?", id).Delete(&domain.VgIdent{}).Error; err != nil {
		return err
	}
	if err := conn.Exec("DELETE FROM rel_vorgang_init WHERE vorgang_id = ?", id).Error; err != nil {
		return err
	}
	return conn.Delete(&domain.Vorgang{}, id).Error
}
