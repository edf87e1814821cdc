package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApiKey is an issued credential. Only the keytag and a bcrypt hash of the
// remainder are stored. DeletedBy encodes a three-way convention, not a
// database-enforced invariant: NULL means active, self-reference means the
// key was rotated or expired, any other id means it was deliberately
// revoked by that key's holder.
type ApiKey struct {
	ID          int64      `gorm:"primaryKey" json:"-"`
	Keytag      string     `gorm:"not null;uniqueIndex" json:"keytag"`
	KeyHash     string     `gorm:"not null" json:"-"`
	Scope       APIScope   `gorm:"not null" json:"scope"`
	CollectorID uuid.UUID  `gorm:"type:uuid;not null" json:"collector_id"`
	CreatedBy   *int64     `json:"-"`
	DeletedBy   *int64     `gorm:"index" json:"-"`
	RotatedFor  *int64     `json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	LastUsedAt  *time.Time `json:"-"`
}

func (ApiKey) TableName() string {
	return "api_keys"
}

// Active reports whether the key may authenticate right now.
func (k *ApiKey) Active(now time.Time) bool {
	return k.DeletedBy == nil && now.Before(k.ExpiresAt)
}
