package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Vorgang is a tracked legislative procedure, the top-level entity scrapers
// submit. The struct doubles as GORM model and API payload; internal ids and
// foreign keys never leave the process.
type Vorgang struct {
	ID                  int64                       `gorm:"primaryKey" json:"-"`
	ApiID               uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null;column:api_id" json:"api_id"`
	Titel               string                      `gorm:"not null" json:"titel"`
	Kurztitel           *string                     `json:"kurztitel,omitempty"`
	Wahlperiode         int32                       `gorm:"not null;index" json:"wahlperiode"`
	Typ                 Vorgangstyp                 `gorm:"not null;index" json:"typ"`
	Verfassungsaendernd bool                        `gorm:"not null" json:"verfassungsaendernd"`
	Links               datatypes.JSONSlice[string] `json:"links,omitempty"`
	Ids                 []VgIdent                   `gorm:"foreignKey:VorgangID;constraint:OnDelete:CASCADE" json:"ids,omitempty"`
	Initiatoren         []Autor                     `gorm:"many2many:rel_vorgang_init" json:"initiatoren"`
	Stationen           []Station                   `gorm:"foreignKey:VorgangID;constraint:OnDelete:CASCADE" json:"stationen"`
	CreatedAt           time.Time                   `gorm:"not null" json:"-"`
	UpdatedAt           time.Time                   `gorm:"not null" json:"-"`
}

func (Vorgang) TableName() string {
	return "vorgang"
}

// VgIdent is a typed external identifier of a procedure, e.g. the number of
// the initiating Drucksache. Participates in compound-key resolution.
type VgIdent struct {
	ID        int64      `gorm:"primaryKey" json:"-"`
	VorgangID int64      `gorm:"not null;index;uniqueIndex:uq_vg_ident" json:"-"`
	Ident     string     `gorm:"not null;uniqueIndex:uq_vg_ident" json:"id"`
	Typ       VgIdentTyp `gorm:"not null;uniqueIndex:uq_vg_ident" json:"typ"`
}

func (VgIdent) TableName() string {
	return "vg_ident"
}
