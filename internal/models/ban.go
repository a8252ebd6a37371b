package models

import (
	"time"

	"github.com/google/uuid"
)

// Ban types. Warnings are recorded like bans but never block play.
const (
	BanTypeTemporary = "temporary"
	BanTypePermanent = "permanent"
	BanTypeWarning   = "warning"
)

type UserBan struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ReportID     *uuid.UUID `gorm:"type:uuid;index" json:"report_id,omitempty"`
	BanType      string     `gorm:"not null;size:20" json:"ban_type"`
	Reason       string     `gorm:"not null;size:1000" json:"reason"`
	DurationDays int        `json:"duration_days,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LiftedAt     *time.Time `json:"lifted_at,omitempty"`
	LiftedBy     *uuid.UUID `gorm:"type:uuid" json:"lifted_by,omitempty"`
	LiftReason   string     `gorm:"size:1000" json:"lift_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	User         User       `gorm:"foreignKey:UserID" json:"-"`
}

// ValidBanType reports whether t is one of the accepted ban types.
func ValidBanType(t string) bool {
	switch t {
	case BanTypeTemporary, BanTypePermanent, BanTypeWarning:
		return true
	}
	return false
}

// IsLifted reports whether an admin has lifted this ban.
func (b *UserBan) IsLifted() bool {
	return b.LiftedAt != nil
}

// IsExpired reports whether a temporary ban has run out at the given time.
// Permanent bans and warnings never expire.
func (b *UserBan) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

// IsActive reports whether the ban is still in force at the given time.
func (b *UserBan) IsActive(now time.Time) bool {
	return !b.IsLifted() && !b.IsExpired(now)
}

// UserBanStatus is the read-only projection of a user's current standing.
// It is computed from the active ban set, never persisted.
type UserBanStatus struct {
	IsBanned  bool       `json:"is_banned"`
	BanType   string     `json:"ban_type,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CanAppeal bool       `json:"can_appeal"`
	ReportID  *uuid.UUID `json:"report_id,omitempty"`
}

// NotBanned is the projection for a user with no active ban.
func NotBanned() *UserBanStatus {
	return &UserBanStatus{IsBanned: false, CanAppeal: true}
}
