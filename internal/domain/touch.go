package domain

import (
	"time"

	"github.com/google/uuid"
)

// TouchRecord attributes a write to a collector: one row per
// (entity kind, entity id, collector id), refreshed in place when the same
// collector touches the same entity again. Each entity keeps a bounded
// number of recent touches; the attribution service evicts the oldest rows
// beyond capacity. Advisory only, never blocks a write.
type TouchRecord struct {
	ID          int64      `gorm:"primaryKey" json:"-"`
	EntityKind  EntityKind `gorm:"not null;uniqueIndex:uq_touch;index:idx_touch_entity" json:"entity_kind"`
	EntityID    int64      `gorm:"not null;uniqueIndex:uq_touch;index:idx_touch_entity" json:"-"`
	CollectorID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_touch;index" json:"collector_id"`
	KeyID       int64      `gorm:"not null" json:"-"`
	TouchedAt   time.Time  `gorm:"not null;index" json:"touched_at"`
}

func (TouchRecord) TableName() string {
	return "scraper_touched"
}
