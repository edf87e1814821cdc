package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Station is one stage in a procedure's lifecycle. Owned by exactly one
// Vorgang and cascade-deleted with it.
type Station struct {
	ID              int64                       `gorm:"primaryKey" json:"-"`
	ApiID           *uuid.UUID                  `gorm:"type:uuid;uniqueIndex;column:api_id" json:"api_id,omitempty"`
	VorgangID       int64                       `gorm:"not null;index" json:"-"`
	Typ             Stationstyp                 `gorm:"not null;index" json:"typ"`
	Titel           *string                     `json:"titel,omitempty"`
	Parlament       Parlament                   `gorm:"not null" json:"parlament"`
	GremiumID       *int64                      `gorm:"index" json:"-"`
	Gremium         *Gremium                    `gorm:"foreignKey:GremiumID" json:"gremium,omitempty"`
	GremiumFederf   *bool                       `gorm:"column:gremium_federf" json:"gremium_federf,omitempty"`
	ZpStart         time.Time                   `gorm:"not null;column:zp_start" json:"zp_start"`
	ZpModifiziert   *time.Time                  `gorm:"column:zp_modifiziert" json:"zp_modifiziert,omitempty"`
	Trojanergefahr  *int                        `json:"trojanergefahr,omitempty"`
	Link            *string                     `json:"link,omitempty"`
	AdditionalLinks datatypes.JSONSlice[string] `json:"additional_links,omitempty"`
	Schlagworte     datatypes.JSONSlice[string] `json:"schlagworte,omitempty"`
	Dokumente       []Dokument                  `gorm:"many2many:rel_station_dokument" json:"dokumente"`
	Stellungnahmen  []Dokument                  `gorm:"many2many:rel_station_stln" json:"stellungnahmen,omitempty"`
	CreatedAt       time.Time                   `gorm:"not null" json:"-"`
	UpdatedAt       time.Time                   `gorm:"not null" json:"-"`
}

func (Station) TableName() string {
	return "station"
}
