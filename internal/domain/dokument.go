package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dokument is a parliamentary paper. The content hash is the canonical
// dedup key; api_id is assigned on first sight and preserved across merges.
// Version chains are kept as an explicit predecessor id, never a live
// back-pointer, so the chain stays acyclic by construction.
type Dokument struct {
	ID              int64                       `gorm:"primaryKey" json:"-"`
	ApiID           *uuid.UUID                  `gorm:"type:uuid;uniqueIndex;column:api_id" json:"api_id,omitempty"`
	Hash            string                      `gorm:"not null;uniqueIndex" json:"hash"`
	Typ             Doktyp                      `gorm:"not null;index" json:"typ"`
	Titel           string                      `gorm:"not null" json:"titel"`
	Kurztitel       *string                     `json:"kurztitel,omitempty"`
	Vorwort         *string                     `json:"vorwort,omitempty"`
	Volltext        string                      `gorm:"not null" json:"volltext"`
	Zusammenfassung *string                     `json:"zusammenfassung,omitempty"`
	Drucksnr        *string                     `gorm:"index" json:"drucksnr,omitempty"`
	Link            string                      `gorm:"not null" json:"link"`
	Meinung         *int                        `json:"meinung,omitempty"`
	Schlagworte     datatypes.JSONSlice[string] `json:"schlagworte,omitempty"`
	Autoren         []Autor                     `gorm:"many2many:rel_dok_autor" json:"autoren"`
	VorgaengerID    *int64                      `gorm:"column:vorgaenger_id" json:"-"`
	Vorgaenger      *uuid.UUID                  `gorm:"-" json:"vorgaenger,omitempty"`
	ZpErstellt      *time.Time                  `gorm:"column:zp_erstellt" json:"zp_erstellt,omitempty"`
	ZpReferenz      time.Time                   `gorm:"not null;column:zp_referenz" json:"zp_referenz"`
	ZpModifiziert   time.Time                   `gorm:"not null;column:zp_modifiziert" json:"zp_modifiziert"`
	CreatedAt       time.Time                   `gorm:"not null" json:"-"`
	UpdatedAt       time.Time                   `gorm:"not null" json:"-"`
}

func (Dokument) TableName() string {
	return "dokument"
}
