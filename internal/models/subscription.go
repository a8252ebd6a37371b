package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis tiers. Pro subscribers get the deeper analysis pass.
const (
	TierBasic = "basic"
	TierPro   = "pro"
)

type Subscription struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Plan      string     `gorm:"not null;size:50" json:"plan"`
	Status    string     `gorm:"not null;default:'active';size:20" json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

// IsActive reports whether the subscription grants pro features at the given time.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != "active" {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}
