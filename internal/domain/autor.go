package domain

import "time"

// Autor is a person or organisation authoring documents or initiating
// procedures. Identity is fuzzy: resolution treats two records as the same
// entity when every present field clears the similarity threshold and
// absent fields are absent on both sides.
type Autor struct {
	ID            int64   `gorm:"primaryKey" json:"-"`
	Person        *string `gorm:"index" json:"person,omitempty"`
	Organisation  string  `gorm:"not null;index" json:"organisation"`
	Fachgebiet    *string `json:"fachgebiet,omitempty"`
	Lobbyregister *string `json:"lobbyregister,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"-"`
}

func (Autor) TableName() string {
	return "autor"
}
