package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/caroarena/moderation-backend/internal/storage"
	"github.com/google/uuid"
)

// BanLifter is the slice of the penalty ledger the appeal workflow needs.
type BanLifter interface {
	LiftBan(banID, adminID uuid.UUID, reason string) (*models.UserBan, error)
}

// AppealService creates and processes appeals. Appeals are a pure
// human-review artifact: nothing here ever re-runs rule analysis or calls
// the external analysis service.
type AppealService struct {
	appeals storage.AppealStore
	reports storage.ReportStore
	bans    storage.BanStore
	lifter  BanLifter
}

func NewAppealService(appeals storage.AppealStore, reports storage.ReportStore, bans storage.BanStore, lifter BanLifter) *AppealService {
	return &AppealService{
		appeals: appeals,
		reports: reports,
		bans:    bans,
		lifter:  lifter,
	}
}

// CreateAppeal opens a pending appeal against a decided report. Each user
// gets exactly one appeal per report; a second attempt is a conflict. The
// report is flipped into the admin appeal queue.
func (s *AppealService) CreateAppeal(reportID, userID uuid.UUID, reason string) (*models.Appeal, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New("reason is required")
	}

	report, err := s.reports.GetByID(reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	exists, err := s.AppealExists(reportID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAppeal
	}

	appeal := &models.Appeal{
		ID:       uuid.New(),
		ReportID: reportID,
		UserID:   userID,
		Reason:   reason,
		Status:   models.AppealStatusPending,
	}
	if err := s.appeals.Create(appeal); err != nil {
		// The unique index backstops the existence check under races.
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateAppeal
		}
		return nil, fmt.Errorf("failed to create appeal: %w", err)
	}

	// Surface the report in the appeal queue; a still-pending report is
	// already in the superset.
	if report.Status != models.ReportStatusPending {
		report.Status = models.ReportStatusAppealPending
		if err := s.reports.Update(report); err != nil {
			slog.Error("failed to queue report for appeal review",
				"report_id", reportID.String(), "error", err)
		}
	}

	slog.Info("appeal created",
		"appeal_id", appeal.ID.String(),
		"report_id", reportID.String(),
		"user_id", userID.String(),
	)
	return appeal, nil
}

// ProcessAppeal resolves a pending appeal. On approval with liftBan set,
// the ban linked to the appealed report is lifted as well; rejected appeals
// never lift a ban regardless of the flag.
func (s *AppealService) ProcessAppeal(appealID uuid.UUID, status, adminResponse string, adminID uuid.UUID, liftBan bool) (*models.Appeal, error) {
	if !models.ValidAppealResolution(status) {
		return nil, errors.New("invalid status: must be approved or rejected")
	}

	appeal, err := s.appeals.GetByID(appealID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAppealNotFound
		}
		return nil, err
	}
	if appeal.Status != models.AppealStatusPending {
		return nil, ErrAppealAlreadyResolved
	}

	appeal.Status = status
	appeal.AdminResponse = adminResponse
	appeal.AdminID = &adminID

	if err := s.appeals.Update(appeal); err != nil {
		return nil, fmt.Errorf("failed to update appeal: %w", err)
	}

	if status == models.AppealStatusApproved && liftBan {
		s.liftLinkedBan(appeal, adminID)
	}

	slog.Info("appeal processed",
		"appeal_id", appeal.ID.String(),
		"status", status,
		"admin_id", adminID.String(),
		"lift_ban", liftBan,
	)
	return appeal, nil
}

// liftLinkedBan lifts the ban tied to the appealed report, if one exists.
// A missing or already-lifted ban does not fail the appeal resolution.
func (s *AppealService) liftLinkedBan(appeal *models.Appeal, adminID uuid.UUID) {
	ban, err := s.bans.GetByReport(appeal.ReportID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("ban lookup failed during appeal", "report_id", appeal.ReportID.String(), "error", err)
		}
		return
	}

	if _, err := s.lifter.LiftBan(ban.ID, adminID, "appeal approved"); err != nil {
		if !errors.Is(err, ErrBanAlreadyLifted) {
			slog.Error("failed to lift ban for approved appeal",
				"appeal_id", appeal.ID.String(), "ban_id", ban.ID.String(), "error", err)
		}
	}
}

// GetAppeal returns one appeal by ID.
func (s *AppealService) GetAppeal(appealID uuid.UUID) (*models.Appeal, error) {
	appeal, err := s.appeals.GetByID(appealID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAppealNotFound
		}
		return nil, err
	}
	return appeal, nil
}

// GetPendingAppeals lists unresolved appeals, oldest first.
func (s *AppealService) GetPendingAppeals() ([]models.Appeal, error) {
	return s.appeals.ListPending()
}

// GetAppealsForReport lists all appeals filed against a report.
func (s *AppealService) GetAppealsForReport(reportID uuid.UUID) ([]models.Appeal, error) {
	return s.appeals.ListByReport(reportID)
}

// GetAppealsForUser lists a user's appeals, newest first.
func (s *AppealService) GetAppealsForUser(userID uuid.UUID) ([]models.Appeal, error) {
	return s.appeals.ListByUser(userID)
}

// AppealExists reports whether the user already appealed the report.
func (s *AppealService) AppealExists(reportID, userID uuid.UUID) (bool, error) {
	_, err := s.appeals.GetByReportAndUser(reportID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
