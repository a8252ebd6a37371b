package storage

import (
	"errors"
	"strings"

	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

// --- Reports ---

type GormReportStore struct {
	db *gorm.DB
}

func NewGormReportStore(db *gorm.DB) *GormReportStore {
	return &GormReportStore{db: db}
}

func (s *GormReportStore) Create(report *models.Report) error {
	return translateErr(s.db.Create(report).Error)
}

func (s *GormReportStore) GetByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &report, nil
}

func (s *GormReportStore) Update(report *models.Report) error {
	return translateErr(s.db.Save(report).Error)
}

func (s *GormReportStore) List(filter ReportFilter) ([]models.Report, int64, error) {
	query := s.db.Model(&models.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	var reports []models.Report
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reports).Error
	return reports, total, err
}

// --- Bans ---

type GormBanStore struct {
	db *gorm.DB
}

func NewGormBanStore(db *gorm.DB) *GormBanStore {
	return &GormBanStore{db: db}
}

func (s *GormBanStore) Create(ban *models.UserBan) error {
	return translateErr(s.db.Create(ban).Error)
}

func (s *GormBanStore) GetByID(id uuid.UUID) (*models.UserBan, error) {
	var ban models.UserBan
	if err := s.db.First(&ban, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &ban, nil
}

func (s *GormBanStore) Update(ban *models.UserBan) error {
	return translateErr(s.db.Save(ban).Error)
}

func (s *GormBanStore) ListByUser(userID uuid.UUID) ([]models.UserBan, error) {
	var bans []models.UserBan
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bans).Error
	return bans, err
}

func (s *GormBanStore) GetByReport(reportID uuid.UUID) (*models.UserBan, error) {
	var ban models.UserBan
	if err := s.db.Where("report_id = ?", reportID).Order("created_at DESC").First(&ban).Error; err != nil {
		return nil, translateErr(err)
	}
	return &ban, nil
}

// --- Appeals ---

type GormAppealStore struct {
	db *gorm.DB
}

func NewGormAppealStore(db *gorm.DB) *GormAppealStore {
	return &GormAppealStore{db: db}
}

func (s *GormAppealStore) Create(appeal *models.Appeal) error {
	return translateErr(s.db.Create(appeal).Error)
}

func (s *GormAppealStore) GetByID(id uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := s.db.First(&appeal, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &appeal, nil
}

func (s *GormAppealStore) Update(appeal *models.Appeal) error {
	return translateErr(s.db.Save(appeal).Error)
}

func (s *GormAppealStore) GetByReportAndUser(reportID, userID uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	err := s.db.Where("report_id = ? AND user_id = ?", reportID, userID).First(&appeal).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &appeal, nil
}

func (s *GormAppealStore) ListPending() ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := s.db.Where("status = ?", models.AppealStatusPending).Order("created_at ASC").Find(&appeals).Error
	return appeals, err
}

func (s *GormAppealStore) ListByReport(reportID uuid.UUID) ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := s.db.Where("report_id = ?", reportID).Order("created_at ASC").Find(&appeals).Error
	return appeals, err
}

func (s *GormAppealStore) ListByUser(userID uuid.UUID) ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&appeals).Error
	return appeals, err
}

// --- Matches ---

type GormMatchStore struct {
	db *gorm.DB
}

func NewGormMatchStore(db *gorm.DB) *GormMatchStore {
	return &GormMatchStore{db: db}
}

func (s *GormMatchStore) GetByID(id uuid.UUID) (*models.Match, error) {
	var match models.Match
	if err := s.db.First(&match, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &match, nil
}
