package domain

import "time"

// Gremium is a parliamentary committee, identified by parliament, working
// period and name. Shared between stations and sitzungen.
type Gremium struct {
	ID          int64     `gorm:"primaryKey" json:"-"`
	Parlament   Parlament `gorm:"not null;uniqueIndex:uq_gremium" json:"parlament"`
	Wahlperiode int32     `gorm:"not null;uniqueIndex:uq_gremium" json:"wahlperiode"`
	Name        string    `gorm:"not null;uniqueIndex:uq_gremium" json:"name"`
	Link        *string   `json:"link,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`
}

func (Gremium) TableName() string {
	return "gremium"
}
