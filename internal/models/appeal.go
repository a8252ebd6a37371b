package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppealStatusPending  = "pending"
	AppealStatusApproved = "approved"
	AppealStatusRejected = "rejected"
)

// Appeal is a human-review request against a decided report. At most one
// appeal may exist per (report, user) pair, enforced by the unique index.
type Appeal struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_appeals_report_user" json:"report_id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_appeals_report_user" json:"user_id"`
	Reason        string     `gorm:"not null;size:2000" json:"reason"`
	Status        string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	AdminResponse string     `gorm:"size:2000" json:"admin_response,omitempty"`
	AdminID       *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	User          User       `gorm:"foreignKey:UserID" json:"-"`
}

// ValidAppealResolution reports whether s is a terminal appeal status.
func ValidAppealResolution(s string) bool {
	return s == AppealStatusApproved || s == AppealStatusRejected
}
