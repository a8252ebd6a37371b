package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	MatchID        uuid.UUID `json:"match_id"`
	ReportedUserID uuid.UUID `json:"reported_user_id"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
}

type UpdateReportRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

type ApplyBanRequest struct {
	UserID       uuid.UUID  `json:"user_id"`
	ReportID     *uuid.UUID `json:"report_id,omitempty"`
	BanType      string     `json:"ban_type"`
	Reason       string     `json:"reason"`
	DurationDays int        `json:"duration_days,omitempty"`
}

type LiftBanRequest struct {
	Reason string `json:"reason"`
}

type CreateAppealRequest struct {
	ReportID uuid.UUID `json:"report_id"`
	Reason   string    `json:"reason"`
}

type ProcessAppealRequest struct {
	Status        string `json:"status"`
	AdminResponse string `json:"admin_response"`
	LiftBan       bool   `json:"lift_ban"`
}
