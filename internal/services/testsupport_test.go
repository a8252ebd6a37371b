package services

import (
	"context"
	"sync"

	"github.com/caroarena/moderation-backend/internal/aiclient"
	"github.com/caroarena/moderation-backend/internal/anticheat"
	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/caroarena/moderation-backend/internal/storage"
	"github.com/google/uuid"
)

// In-memory stores. Each returns copies so service-side mutation only
// becomes visible through Update, matching database semantics.

type memReportStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]models.Report
}

func newMemReportStore() *memReportStore {
	return &memReportStore{reports: make(map[uuid.UUID]models.Report)}
}

func (s *memReportStore) Create(report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = *report
	return nil
}

func (s *memReportStore) GetByID(id uuid.UUID) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &report, nil
}

func (s *memReportStore) Update(report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[report.ID]; !ok {
		return storage.ErrNotFound
	}
	s.reports[report.ID] = *report
	return nil
}

func (s *memReportStore) List(filter storage.ReportFilter) ([]models.Report, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, report := range s.reports {
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, report.Status) {
			continue
		}
		if filter.Type != "" && report.Type != filter.Type {
			continue
		}
		out = append(out, report)
	}
	return out, int64(len(out)), nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type memBanStore struct {
	mu   sync.Mutex
	bans []models.UserBan
}

func newMemBanStore() *memBanStore {
	return &memBanStore{}
}

func (s *memBanStore) Create(ban *models.UserBan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans = append(s.bans, *ban)
	return nil
}

func (s *memBanStore) GetByID(id uuid.UUID) (*models.UserBan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bans {
		if s.bans[i].ID == id {
			ban := s.bans[i]
			return &ban, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memBanStore) Update(ban *models.UserBan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bans {
		if s.bans[i].ID == ban.ID {
			s.bans[i] = *ban
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListByUser returns newest first, matching the database ordering.
func (s *memBanStore) ListByUser(userID uuid.UUID) ([]models.UserBan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UserBan
	for i := len(s.bans) - 1; i >= 0; i-- {
		if s.bans[i].UserID == userID {
			out = append(out, s.bans[i])
		}
	}
	return out, nil
}

func (s *memBanStore) GetByReport(reportID uuid.UUID) (*models.UserBan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bans {
		if s.bans[i].ReportID != nil && *s.bans[i].ReportID == reportID {
			ban := s.bans[i]
			return &ban, nil
		}
	}
	return nil, storage.ErrNotFound
}

type memAppealStore struct {
	mu      sync.Mutex
	appeals []models.Appeal
}

func newMemAppealStore() *memAppealStore {
	return &memAppealStore{}
}

func (s *memAppealStore) Create(appeal *models.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appeals {
		if s.appeals[i].ReportID == appeal.ReportID && s.appeals[i].UserID == appeal.UserID {
			return storage.ErrDuplicate
		}
	}
	s.appeals = append(s.appeals, *appeal)
	return nil
}

func (s *memAppealStore) GetByID(id uuid.UUID) (*models.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appeals {
		if s.appeals[i].ID == id {
			appeal := s.appeals[i]
			return &appeal, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memAppealStore) Update(appeal *models.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appeals {
		if s.appeals[i].ID == appeal.ID {
			s.appeals[i] = *appeal
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memAppealStore) GetByReportAndUser(reportID, userID uuid.UUID) (*models.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appeals {
		if s.appeals[i].ReportID == reportID && s.appeals[i].UserID == userID {
			appeal := s.appeals[i]
			return &appeal, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memAppealStore) ListPending() ([]models.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appeal
	for _, appeal := range s.appeals {
		if appeal.Status == models.AppealStatusPending {
			out = append(out, appeal)
		}
	}
	return out, nil
}

func (s *memAppealStore) ListByReport(reportID uuid.UUID) ([]models.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appeal
	for _, appeal := range s.appeals {
		if appeal.ReportID == reportID {
			out = append(out, appeal)
		}
	}
	return out, nil
}

func (s *memAppealStore) ListByUser(userID uuid.UUID) ([]models.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appeal
	for i := len(s.appeals) - 1; i >= 0; i-- {
		if s.appeals[i].UserID == userID {
			out = append(out, s.appeals[i])
		}
	}
	return out, nil
}

type memMatchStore struct {
	mu      sync.Mutex
	matches map[uuid.UUID]models.Match
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{matches: make(map[uuid.UUID]models.Match)}
}

func (s *memMatchStore) add(match *models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.ID] = *match
}

func (s *memMatchStore) GetByID(id uuid.UUID) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &match, nil
}

// Pipeline collaborator stubs with call counters.

type stubEngine struct {
	mu     sync.Mutex
	result *anticheat.RuleAnalysisResult
	err    error
	calls  int
}

func (e *stubEngine) AnalyzeMatch(match *models.Match) (*anticheat.RuleAnalysisResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.result, e.err
}

func (e *stubEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type stubAnalysisClient struct {
	mu      sync.Mutex
	result  *aiclient.AnalysisResult
	healthy bool
	calls   int
}

func (c *stubAnalysisClient) AnalyzeMatch(ctx context.Context, req *aiclient.AnalysisRequest) *aiclient.AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.result
}

func (c *stubAnalysisClient) HealthCheck(ctx context.Context) bool {
	return c.healthy
}

func (c *stubAnalysisClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type stubTierResolver struct {
	tier string
}

func (r *stubTierResolver) ResolveTier(userID uuid.UUID) string {
	if r.tier == "" {
		return models.TierBasic
	}
	return r.tier
}

type stubSender struct {
	mu        sync.Mutex
	delivered bool
	messages  []string
}

func (s *stubSender) Send(userID uuid.UUID, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return s.delivered
}

func (s *stubSender) lastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}
