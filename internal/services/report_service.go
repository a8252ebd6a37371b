package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caroarena/moderation-backend/internal/aicache"
	"github.com/caroarena/moderation-backend/internal/aiclient"
	"github.com/caroarena/moderation-backend/internal/anticheat"
	"github.com/caroarena/moderation-backend/internal/dto"
	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/caroarena/moderation-backend/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
)

// MatchAnalyzer runs the rule checks over a match.
type MatchAnalyzer interface {
	AnalyzeMatch(match *models.Match) (*anticheat.RuleAnalysisResult, error)
}

// AnalysisClient is the external analysis bridge as the pipeline sees it:
// a nil result means the verdict is unavailable, and the client owns all
// retry policy.
type AnalysisClient interface {
	AnalyzeMatch(ctx context.Context, req *aiclient.AnalysisRequest) *aiclient.AnalysisResult
	HealthCheck(ctx context.Context) bool
}

// TierResolver picks the analysis depth a user's subscription pays for.
type TierResolver interface {
	ResolveTier(userID uuid.UUID) string
}

// ReportService orchestrates the cheat-report pipeline: creation, rule
// analysis, the cached external verdict, the status decision, and the
// admin query/update surface.
type ReportService struct {
	reports  storage.ReportStore
	matches  storage.MatchStore
	engine   MatchAnalyzer
	ai       AnalysisClient
	cache    *aicache.Cache
	tiers    TierResolver
	cacheTTL time.Duration
	flight   singleflight.Group
}

func NewReportService(
	reports storage.ReportStore,
	matches storage.MatchStore,
	engine MatchAnalyzer,
	ai AnalysisClient,
	cache *aicache.Cache,
	tiers TierResolver,
	cacheTTL time.Duration,
) *ReportService {
	if cacheTTL <= 0 {
		cacheTTL = aicache.DefaultTTL
	}
	return &ReportService{
		reports:  reports,
		matches:  matches,
		engine:   engine,
		ai:       ai,
		cache:    cache,
		tiers:    tiers,
		cacheTTL: cacheTTL,
	}
}

// CreateReport validates and persists a new pending report.
func (s *ReportService) CreateReport(req *dto.CreateReportRequest, reporterID uuid.UUID) (*models.Report, error) {
	if !models.ValidReportType(req.Type) {
		return nil, errors.New("invalid type: must be cheating, harassment, game_sabotage, or other")
	}
	if req.MatchID == uuid.Nil {
		return nil, errors.New("match_id is required")
	}
	if req.ReportedUserID == uuid.Nil {
		return nil, errors.New("reported_user_id is required")
	}
	if req.ReportedUserID == reporterID {
		return nil, errors.New("cannot report yourself")
	}
	if len(req.Description) > 1000 {
		return nil, errors.New("description too long (max 1000 characters)")
	}

	report := &models.Report{
		ID:             uuid.New(),
		MatchID:        req.MatchID,
		ReporterID:     reporterID,
		ReportedUserID: req.ReportedUserID,
		Type:           req.Type,
		Description:    strings.TrimSpace(req.Description),
		Status:         models.ReportStatusPending,
	}

	if err := s.reports.Create(report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

// ProcessCheatReport runs the full pipeline for a pending report: rule
// analysis, the cached external verdict, and the decision table. A report
// that already left pending is returned unchanged so re-runs never
// overwrite an admin's decision. Rule analysis is always fresh; only the
// external verdict is memoized.
func (s *ReportService) ProcessCheatReport(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if report.Status != models.ReportStatusPending {
		return report, nil
	}

	match, err := s.matches.GetByID(report.MatchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	ruleResult, err := s.engine.AnalyzeMatch(match)
	if err != nil {
		return nil, fmt.Errorf("rule analysis failed: %w", err)
	}

	tier := s.tiers.ResolveTier(report.ReportedUserID)
	aiResult := s.fetchVerdict(ctx, match, report, tier)

	report.Status = anticheat.DetermineStatus(ruleResult, aiResult)
	if snapshot, err := json.Marshal(ruleResult); err == nil {
		report.RuleResult = datatypes.JSON(snapshot)
	}
	if aiResult != nil {
		if snapshot, err := json.Marshal(aiResult); err == nil {
			report.AIResult = datatypes.JSON(snapshot)
		}
	}

	if err := s.reports.Update(report); err != nil {
		return nil, fmt.Errorf("failed to persist verdict: %w", err)
	}

	slog.Info("cheat report processed",
		"report_id", report.ID.String(),
		"match_id", report.MatchID.String(),
		"tier", tier,
		"violations", len(ruleResult.Violations),
		"confidence", ruleResult.Confidence,
		"ai_available", aiResult != nil,
		"status", report.Status,
	)
	return report, nil
}

// fetchVerdict resolves the external verdict cache-first. Concurrent misses
// for the same (match, tier) collapse into one upstream call, best-effort;
// a nil return means the verdict is unavailable.
func (s *ReportService) fetchVerdict(ctx context.Context, match *models.Match, report *models.Report, tier string) *aiclient.AnalysisResult {
	matchID := match.ID.String()
	if cached := s.cache.Get(matchID, tier); cached != nil {
		return cached
	}

	key := aicache.BuildKey(matchID, tier)
	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		if cached := s.cache.Get(matchID, tier); cached != nil {
			return cached, nil
		}

		moves, err := match.MoveList()
		if err != nil {
			return (*aiclient.AnalysisResult)(nil), nil
		}
		payload := make([]aiclient.MovePayload, len(moves))
		for i, m := range moves {
			payload[i] = aiclient.MovePayload{X: m.X, Y: m.Y, Player: m.Player}
		}

		result := s.ai.AnalyzeMatch(ctx, &aiclient.AnalysisRequest{
			MatchID: matchID,
			Moves:   payload,
			Tier:    tier,
			UserID:  report.ReportedUserID.String(),
		})
		if result != nil {
			s.cache.Set(matchID, tier, result, s.cacheTTL)
		}
		return result, nil
	})

	result, _ := v.(*aiclient.AnalysisResult)
	return result
}

// GetReports lists reports for the admin surface.
func (s *ReportService) GetReports(filter storage.ReportFilter) ([]models.Report, int64, error) {
	return s.reports.List(filter)
}

// GetAppealQueue lists reports awaiting admin attention: everything still
// pending plus decided reports that picked up an appeal.
func (s *ReportService) GetAppealQueue(page, perPage int) ([]models.Report, int64, error) {
	return s.reports.List(storage.ReportFilter{
		Statuses: []string{models.ReportStatusPending, models.ReportStatusAppealPending},
		Page:     page,
		PerPage:  perPage,
	})
}

// GetReport returns one report by ID.
func (s *ReportService) GetReport(reportID uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// UpdateReport applies an admin's status/notes change, recording who acted.
func (s *ReportService) UpdateReport(reportID uuid.UUID, req *dto.UpdateReportRequest, adminID uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if req.Status != "" {
		switch req.Status {
		case models.ReportStatusPending, models.ReportStatusAutoFlagged,
			models.ReportStatusEscalated, models.ReportStatusDismissed,
			models.ReportStatusAppealPending:
			report.Status = req.Status
		default:
			return nil, errors.New("invalid status: " + req.Status)
		}
	}
	if req.AdminNotes != "" {
		report.AdminNotes = req.AdminNotes
	}
	report.ReviewedBy = &adminID

	if err := s.reports.Update(report); err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	slog.Info("report updated by admin",
		"report_id", report.ID.String(),
		"admin_id", adminID.String(),
		"status", report.Status,
	)
	return report, nil
}
