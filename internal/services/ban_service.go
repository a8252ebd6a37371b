package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/caroarena/moderation-backend/internal/notify"
	"github.com/caroarena/moderation-backend/internal/storage"
	"github.com/google/uuid"
)

// BanService applies, queries, and lifts bans. A lifted ban is terminal;
// re-banning a user always creates a new record.
type BanService struct {
	bans     storage.BanStore
	appeals  storage.AppealStore
	notifier notify.Sender
	now      func() time.Time
}

func NewBanService(bans storage.BanStore, appeals storage.AppealStore, notifier notify.Sender) *BanService {
	return &BanService{
		bans:     bans,
		appeals:  appeals,
		notifier: notifier,
		now:      time.Now,
	}
}

// ApplyBan validates and persists an active ban. durationDays is required
// and positive for temporary bans and ignored for every other type.
func (s *BanService) ApplyBan(userID uuid.UUID, reportID *uuid.UUID, banType, reason string, durationDays int) (*models.UserBan, error) {
	if !models.ValidBanType(banType) {
		return nil, errors.New("invalid ban_type: must be temporary, permanent, or warning")
	}
	if reason == "" {
		return nil, errors.New("reason is required")
	}

	ban := &models.UserBan{
		ID:       uuid.New(),
		UserID:   userID,
		ReportID: reportID,
		BanType:  banType,
		Reason:   reason,
	}

	if banType == models.BanTypeTemporary {
		if durationDays <= 0 {
			return nil, errors.New("duration_days must be positive for temporary bans")
		}
		ban.DurationDays = durationDays
		expires := s.now().AddDate(0, 0, durationDays)
		ban.ExpiresAt = &expires
	}

	if err := s.bans.Create(ban); err != nil {
		return nil, fmt.Errorf("failed to create ban: %w", err)
	}

	slog.Info("ban applied",
		"ban_id", ban.ID.String(),
		"user_id", userID.String(),
		"ban_type", banType,
		"duration_days", ban.DurationDays,
	)
	return ban, nil
}

// LiftBan marks a ban lifted with the acting admin's identity. Lifting an
// already-lifted ban is a conflict; a lifted ban is never reactivated.
func (s *BanService) LiftBan(banID, adminID uuid.UUID, reason string) (*models.UserBan, error) {
	ban, err := s.bans.GetByID(banID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBanNotFound
		}
		return nil, err
	}
	if ban.IsLifted() {
		return nil, ErrBanAlreadyLifted
	}

	lifted := s.now()
	ban.LiftedAt = &lifted
	ban.LiftedBy = &adminID
	ban.LiftReason = reason

	if err := s.bans.Update(ban); err != nil {
		return nil, fmt.Errorf("failed to lift ban: %w", err)
	}

	slog.Info("ban lifted",
		"ban_id", ban.ID.String(),
		"user_id", ban.UserID.String(),
		"admin_id", adminID.String(),
	)
	return ban, nil
}

// CheckUserBanStatus projects the user's current standing. With multiple
// concurrently-active bans, the most restrictive wins (permanent over
// temporary), most recent as tie-break. Warnings never set IsBanned.
func (s *BanService) CheckUserBanStatus(userID uuid.UUID) (*models.UserBanStatus, error) {
	bans, err := s.bans.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var current *models.UserBan
	for i := range bans {
		ban := &bans[i]
		if !ban.IsActive(now) || ban.BanType == models.BanTypeWarning {
			continue
		}
		if current == nil || rankBanType(ban.BanType) > rankBanType(current.BanType) {
			current = ban
		}
	}

	if current == nil {
		return models.NotBanned(), nil
	}

	status := &models.UserBanStatus{
		IsBanned:  true,
		BanType:   current.BanType,
		Reason:    current.Reason,
		ExpiresAt: current.ExpiresAt,
		ReportID:  current.ReportID,
		CanAppeal: false,
	}
	if current.ReportID != nil {
		exists, err := s.appealExists(*current.ReportID, userID)
		if err != nil {
			return nil, err
		}
		status.CanAppeal = !exists
	}
	return status, nil
}

// rankBanType orders ban severity; ListByUser is newest-first, so the first
// ban seen at a given rank is also the most recent.
func rankBanType(banType string) int {
	switch banType {
	case models.BanTypePermanent:
		return 2
	case models.BanTypeTemporary:
		return 1
	default:
		return 0
	}
}

func (s *BanService) appealExists(reportID, userID uuid.UUID) (bool, error) {
	_, err := s.appeals.GetByReportAndUser(reportID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SendBanNotification tells the user about their ban. Delivery failure is
// reported but never rolls back the ban.
func (s *BanService) SendBanNotification(ban *models.UserBan) bool {
	var message string
	switch ban.BanType {
	case models.BanTypePermanent:
		message = fmt.Sprintf("Your account has been permanently banned. Reason: %s", ban.Reason)
	case models.BanTypeTemporary:
		message = fmt.Sprintf("Your account has been banned for %d days. Reason: %s", ban.DurationDays, ban.Reason)
	default:
		message = fmt.Sprintf("You have received a warning. Reason: %s", ban.Reason)
	}

	delivered := s.notifier.Send(ban.UserID, message)
	if !delivered {
		slog.Warn("ban notification delivery failed", "ban_id", ban.ID.String(), "user_id", ban.UserID.String())
	}
	return delivered
}

// GetActiveBans returns the user's bans still in force, warnings included.
func (s *BanService) GetActiveBans(userID uuid.UUID) ([]models.UserBan, error) {
	bans, err := s.bans.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	active := make([]models.UserBan, 0, len(bans))
	for _, ban := range bans {
		if ban.IsActive(now) {
			active = append(active, ban)
		}
	}
	return active, nil
}

// GetBanHistory returns every ban ever applied to the user, newest first.
func (s *BanService) GetBanHistory(userID uuid.UUID) ([]models.UserBan, error) {
	return s.bans.ListByUser(userID)
}
