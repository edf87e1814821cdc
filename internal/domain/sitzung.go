package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sitzung is a scheduled committee session with its agenda items. It links
// to procedures only indirectly, through the documents its TOPs reference.
type Sitzung struct {
	ID        int64      `gorm:"primaryKey" json:"-"`
	ApiID     *uuid.UUID `gorm:"type:uuid;uniqueIndex;column:api_id" json:"api_id,omitempty"`
	Titel     *string    `json:"titel,omitempty"`
	Termin    time.Time  `gorm:"not null;index" json:"termin"`
	GremiumID int64      `gorm:"not null;index" json:"-"`
	Gremium   *Gremium   `gorm:"foreignKey:GremiumID" json:"gremium"`
	Nummer    int32      `gorm:"not null" json:"nummer"`
	Public    bool       `gorm:"not null" json:"public"`
	Link      *string    `json:"link,omitempty"`
	Tops      []Top      `gorm:"foreignKey:SitzungID;constraint:OnDelete:CASCADE" json:"tops"`
	Dokumente []Dokument `gorm:"many2many:rel_sitzung_dokument" json:"dokumente,omitempty"`
	Experten  []Autor    `gorm:"many2many:rel_sitzung_experten" json:"experten,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"-"`
	UpdatedAt time.Time  `gorm:"not null" json:"-"`
}

func (Sitzung) TableName() string {
	return "sitzung"
}

// Top is a single agenda item of a Sitzung.
type Top struct {
	ID        int64      `gorm:"primaryKey" json:"-"`
	SitzungID int64      `gorm:"not null;index" json:"-"`
	Nummer    int32      `gorm:"not null" json:"nummer"`
	Titel     string     `gorm:"not null" json:"titel"`
	Dokumente []Dokument `gorm:"many2many:rel_top_dokument" json:"dokumente,omitempty"`
}

func (Top) TableName() string {
	return "top"
}
