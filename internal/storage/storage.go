package storage

import (
	"errors"
	"time"

	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

// ReportFilter narrows and pages report listings for the admin surface.
type ReportFilter struct {
	Status   string
	Statuses []string
	Type     string
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
}

type ReportStore interface {
	Create(report *models.Report) error
	GetByID(id uuid.UUID) (*models.Report, error)
	Update(report *models.Report) error
	List(filter ReportFilter) ([]models.Report, int64, error)
}

type BanStore interface {
	Create(ban *models.UserBan) error
	GetByID(id uuid.UUID) (*models.UserBan, error)
	Update(ban *models.UserBan) error
	ListByUser(userID uuid.UUID) ([]models.UserBan, error)
	GetByReport(reportID uuid.UUID) (*models.UserBan, error)
}

type AppealStore interface {
	Create(appeal *models.Appeal) error
	GetByID(id uuid.UUID) (*models.Appeal, error)
	Update(appeal *models.Appeal) error
	GetByReportAndUser(reportID, userID uuid.UUID) (*models.Appeal, error)
	ListPending() ([]models.Appeal, error)
	ListByReport(reportID uuid.UUID) ([]models.Appeal, error)
	ListByUser(userID uuid.UUID) ([]models.Appeal, error)
}

type MatchStore interface {
	GetByID(id uuid.UUID) (*models.Match, error)
}
