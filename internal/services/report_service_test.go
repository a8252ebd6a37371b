package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/caroarena/moderation-backend/internal/aicache"
	"github.com/caroarena/moderation-backend/internal/aiclient"
	"github.com/caroarena/moderation-backend/internal/anticheat"
	"github.com/caroarena/moderation-backend/internal/dto"
	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type reportFixture struct {
	service *ReportService
	reports *memReportStore
	matches *memMatchStore
	engine  *stubEngine
	client  *stubAnalysisClient
	cache   *aicache.Cache
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		reports: newMemReportStore(),
		matches: newMemMatchStore(),
		engine:  &stubEngine{result: anticheat.NoViolations()},
		client:  &stubAnalysisClient{},
		cache:   aicache.New(),
	}
	f.service = NewReportService(f.reports, f.matches, f.engine, f.client, f.cache, &stubTierResolver{}, time.Hour)
	return f
}

func (f *reportFixture) addMatch(t *testing.T) *models.Match {
	t.Helper()
	moves := []models.Move{
		{X: 0, Y: 0, Player: "X", Timestamp: time.Now().Add(-time.Minute)},
		{X: 1, Y: 1, Player: "O", Timestamp: time.Now().Add(-50 * time.Second)},
	}
	moveJSON, err := json.Marshal(moves)
	if err != nil {
		t.Fatalf("marshal moves: %v", err)
	}
	match := &models.Match{
		ID:         uuid.New(),
		Player1ID:  uuid.New(),
		Player2ID:  uuid.New(),
		Moves:      datatypes.JSON(moveJSON),
		BoardState: datatypes.JSON(`{"0,0":"X","1,1":"O"}`),
	}
	f.matches.add(match)
	return match
}

func (f *reportFixture) addPendingReport(t *testing.T, matchID uuid.UUID) *models.Report {
	t.Helper()
	report := &models.Report{
		ID:             uuid.New(),
		MatchID:        matchID,
		ReporterID:     uuid.New(),
		ReportedUserID: uuid.New(),
		Type:           models.ReportTypeCheating,
		Status:         models.ReportStatusPending,
	}
	if err := f.reports.Create(report); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return report
}

func violationResult() *anticheat.RuleAnalysisResult {
	return &anticheat.RuleAnalysisResult{
		HasViolations: true,
		Violations: []anticheat.Violation{{
			Type:        anticheat.ViolationMultipleMoves,
			Description: "Player X made 3 consecutive moves without an opponent response (moves 0-2).",
		}},
		Confidence:   anticheat.ConfidenceMedium,
		ReasonResult: "Player X made 3 consecutive moves without an opponent response (moves 0-2).",
	}
}

func cheatVerdict() *aiclient.AnalysisResult {
	return &aiclient.AnalysisResult{Verdict: aiclient.VerdictCheat, AnalyzedAt: time.Now()}
}

func cleanVerdict() *aiclient.AnalysisResult {
	return &aiclient.AnalysisResult{Verdict: aiclient.VerdictClean, AnalyzedAt: time.Now()}
}

func TestCreateReportValidation(t *testing.T) {
	f := newReportFixture(t)
	reporter := uuid.New()
	reported := uuid.New()

	cases := []struct {
		name string
		req  dto.CreateReportRequest
	}{
		{"invalid type", dto.CreateReportRequest{MatchID: uuid.New(), ReportedUserID: reported, Type: "spam"}},
		{"missing match", dto.CreateReportRequest{ReportedUserID: reported, Type: models.ReportTypeCheating}},
		{"missing reported user", dto.CreateReportRequest{MatchID: uuid.New(), Type: models.ReportTypeCheating}},
		{"self report", dto.CreateReportRequest{MatchID: uuid.New(), ReportedUserID: reporter, Type: models.ReportTypeCheating}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.CreateReport(&tc.req, reporter); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateReportStartsPending(t *testing.T) {
	f := newReportFixture(t)
	req := &dto.CreateReportRequest{
		MatchID:        uuid.New(),
		ReportedUserID: uuid.New(),
		Type:           models.ReportTypeCheating,
		Description:    "  suspiciously perfect play  ",
	}

	report, err := f.service.CreateReport(req, uuid.New())
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if report.Status != models.ReportStatusPending {
		t.Errorf("new report status = %q, want pending", report.Status)
	}
	if report.Description != "suspiciously perfect play" {
		t.Errorf("description not trimmed: %q", report.Description)
	}
	if f.engine.callCount() != 0 || f.client.callCount() != 0 {
		t.Error("creation must not trigger analysis")
	}
}

func TestProcessCheatReportAutoFlagged(t *testing.T) {
	f := newReportFixture(t)
	f.engine.result = violationResult()
	f.client.result = cheatVerdict()

	match := f.addMatch(t)
	report := f.addPendingReport(t, match.ID)

	processed, err := f.service.ProcessCheatReport(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("ProcessCheatReport: %v", err)
	}
	if processed.Status != models.ReportStatusAutoFlagged {
		t.Errorf("status = %q, want auto_flagged", processed.Status)
	}
	if len(processed.RuleResult) == 0 {
		t.Error("rule analysis snapshot missing")
	}
	if len(processed.AIResult) == 0 {
		t.Error("analysis verdict snapshot missing")
	}

	stored, err := f.reports.GetByID(report.ID)
	if err != nil {
		t.Fatalf("reload report: %v", err)
	}
	if stored.Status != models.ReportStatusAutoFlagged {
		t.Errorf("persisted status = %q, want auto_flagged", stored.Status)
	}
	if !f.cache.Has(match.ID.String(), models.TierBasic) {
		t.Error("verdict should be cached under the match and tier")
	}
}

func TestProcessCheatReportDismissed(t *testing.T) {
	f := newReportFixture(t)
	f.client.result = cleanVerdict()

	match := f.addMatch(t)
	report := f.addPendingReport(t, match.ID)

	processed, err := f.service.ProcessCheatReport(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("ProcessCheatReport: %v", err)
	}
	if processed.Status != models.ReportStatusDismissed {
		t.Errorf("status = %q, want dismissed", processed.Status)
	}
}

func TestProcessCheatReportDisagreementEscalates(t *testing.T) {
	cases := []struct {
		name    string
		rule    *anticheat.RuleAnalysisResult
		verdict *aiclient.AnalysisResult
	}{
		{"rules fire but verdict clean", violationResult(), cleanVerdict()},
		{"rules clean but verdict cheat", anticheat.NoViolations(), cheatVerdict()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReportFixture(t)
			f.engine.result = tc.rule
			f.client.result = tc.verdict

			match := f.addMatch(t)
			report := f.addPendingReport(t, match.ID)

			processed, err := f.service.ProcessCheatReport(context.Background(), report.ID)
			if err != nil {
				t.Fatalf("ProcessCheatReport: %v", err)
			}
			if processed.Status != models.ReportStatusEscalated {
				t.Errorf("status = %q, want escalated", processed.Status)
			}
		})
	}
}

func TestProcessCheatReportEscalatesWhenAnalysisUnavailable(t *testing.T) {
	f := newReportFixture(t)
	f.client.result = nil // service unreachable

	match := f.addMatch(t)
	report := f.addPendingReport(t, match.ID)

	processed, err := f.service.ProcessCheatReport(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("ProcessCheatReport: %v", err)
	}
	if processed.Status != models.ReportStatusEscalated {
		t.Errorf("even a rules-clean match escalates without a verdict, got %q", processed.Status)
	}
	if len(processed.AIResult) != 0 {
		t.Error("no verdict snapshot should be stored when analysis is unavailable")
	}
	if f.cache.Has(match.ID.String(), models.TierBasic) {
		t.Error("unavailable verdicts must not be cached")
	}
}

func TestProcessCheatReportIsNoopOnceDecided(t *testing.T) {
	f := newReportFixture(t)
	match := f.addMatch(t)
	report := f.addPendingReport(t, match.ID)
	report.Status = models.ReportStatusEscalated
	if err := f.reports.Update(report); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	processed, err := f.service.ProcessCheatReport(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("ProcessCheatReport: %v", err)
	}
	if processed.Status != models.ReportStatusEscalated {
		t.Errorf("status changed on re-run: %q", processed.Status)
	}
	if f.engine.callCount() != 0 {
		t.Error("decided reports must not be re-analyzed")
	}
	if f.client.callCount() != 0 {
		t.Error("decided reports must not call the analysis service")
	}
}

func TestProcessCheatReportReusesCachedVerdict(t *testing.T) {
	f := newReportFixture(t)
	f.client.result = cleanVerdict()

	match := f.addMatch(t)
	first := f.addPendingReport(t, match.ID)
	second := f.addPendingReport(t, match.ID)
	second.ReportedUserID = first.ReportedUserID
	if err := f.reports.Update(second); err != nil {
		t.Fatalf("seed second report: %v", err)
	}

	if _, err := f.service.ProcessCheatReport(context.Background(), first.ID); err != nil {
		t.Fatalf("process first: %v", err)
	}
	if _, err := f.service.ProcessCheatReport(context.Background(), second.ID); err != nil {
		t.Fatalf("process second: %v", err)
	}

	if got := f.client.callCount(); got != 1 {
		t.Errorf("expected 1 upstream call for a shared (match, tier), got %d", got)
	}
	if got := f.engine.callCount(); got != 2 {
		t.Errorf("rule analysis must stay fresh per run, got %d calls", got)
	}
}

func TestProcessCheatReportTierSplitsCache(t *testing.T) {
	f := newReportFixture(t)
	f.client.result = cleanVerdict()

	match := f.addMatch(t)
	basic := f.addPendingReport(t, match.ID)
	if _, err := f.service.ProcessCheatReport(context.Background(), basic.ID); err != nil {
		t.Fatalf("process basic: %v", err)
	}

	// Same match, pro-tier subject: the cached basic verdict must not serve.
	f.service.tiers = &stubTierResolver{tier: models.TierPro}
	pro := f.addPendingReport(t, match.ID)
	if _, err := f.service.ProcessCheatReport(context.Background(), pro.ID); err != nil {
		t.Fatalf("process pro: %v", err)
	}

	if got := f.client.callCount(); got != 2 {
		t.Errorf("distinct tiers must each call upstream, got %d calls", got)
	}
}

func TestProcessCheatReportNotFound(t *testing.T) {
	f := newReportFixture(t)
	if _, err := f.service.ProcessCheatReport(context.Background(), uuid.New()); err != ErrReportNotFound {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestProcessCheatReportMatchMissing(t *testing.T) {
	f := newReportFixture(t)
	report := f.addPendingReport(t, uuid.New())
	if _, err := f.service.ProcessCheatReport(context.Background(), report.ID); err != ErrMatchNotFound {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestUpdateReportRecordsReviewer(t *testing.T) {
	f := newReportFixture(t)
	report := f.addPendingReport(t, uuid.New())
	adminID := uuid.New()

	updated, err := f.service.UpdateReport(report.ID, &dto.UpdateReportRequest{
		Status:     models.ReportStatusDismissed,
		AdminNotes: "reviewed, no evidence",
	}, adminID)
	if err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if updated.Status != models.ReportStatusDismissed {
		t.Errorf("status = %q, want dismissed", updated.Status)
	}
	if updated.ReviewedBy == nil || *updated.ReviewedBy != adminID {
		t.Error("reviewing admin not recorded")
	}
}

func TestUpdateReportRejectsUnknownStatus(t *testing.T) {
	f := newReportFixture(t)
	report := f.addPendingReport(t, uuid.New())
	if _, err := f.service.UpdateReport(report.ID, &dto.UpdateReportRequest{Status: "resolved"}, uuid.New()); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestGetAppealQueueFiltersStatuses(t *testing.T) {
	f := newReportFixture(t)
	pending := f.addPendingReport(t, uuid.New())
	appealed := f.addPendingReport(t, uuid.New())
	appealed.Status = models.ReportStatusAppealPending
	dismissed := f.addPendingReport(t, uuid.New())
	dismissed.Status = models.ReportStatusDismissed
	for _, r := range []*models.Report{appealed, dismissed} {
		if err := f.reports.Update(r); err != nil {
			t.Fatalf("seed status: %v", err)
		}
	}

	queue, total, err := f.service.GetAppealQueue(1, 20)
	if err != nil {
		t.Fatalf("GetAppealQueue: %v", err)
	}
	if total != 2 || len(queue) != 2 {
		t.Fatalf("expected 2 queued reports, got %d (total %d)", len(queue), total)
	}
	for _, r := range queue {
		if r.ID == dismissed.ID {
			t.Error("dismissed report must not appear in the queue")
		}
		if r.ID != pending.ID && r.ID != appealed.ID {
			t.Errorf("unexpected report %s in queue", r.ID)
		}
	}
}
