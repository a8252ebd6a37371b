package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report statuses. "appeal_pending" marks a decided report that re-entered
// the admin queue because the reported user appealed.
const (
	ReportStatusPending       = "pending"
	ReportStatusAutoFlagged   = "auto_flagged"
	ReportStatusEscalated     = "escalated"
	ReportStatusDismissed     = "dismissed"
	ReportStatusAppealPending = "appeal_pending"
)

// Report types accepted from players.
const (
	ReportTypeCheating     = "cheating"
	ReportTypeHarassment   = "harassment"
	ReportTypeGameSabotage = "game_sabotage"
	ReportTypeOther        = "other"
)

type Report struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MatchID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"match_id"`
	ReporterID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedUserID uuid.UUID      `gorm:"type:uuid;not null;index" json:"reported_user_id"`
	Type           string         `gorm:"not null;size:50" json:"type"`
	Description    string         `gorm:"size:1000" json:"description"`
	Status         string         `gorm:"not null;default:'pending';size:50;index" json:"status"`
	AdminNotes     string         `gorm:"size:2000" json:"admin_notes,omitempty"`
	ReviewedBy     *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	RuleResult     datatypes.JSON `gorm:"type:jsonb" json:"rule_result,omitempty"`
	AIResult       datatypes.JSON `gorm:"type:jsonb" json:"ai_result,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Reporter       User           `gorm:"foreignKey:ReporterID" json:"-"`
	ReportedUser   User           `gorm:"foreignKey:ReportedUserID" json:"-"`
}

// ValidReportType reports whether t is one of the accepted report types.
func ValidReportType(t string) bool {
	switch t {
	case ReportTypeCheating, ReportTypeHarassment, ReportTypeGameSabotage, ReportTypeOther:
		return true
	}
	return false
}
