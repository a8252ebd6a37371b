package anticheat

import (
	"github.com/caroarena/moderation-backend/internal/aiclient"
	"github.com/caroarena/moderation-backend/internal/models"
)

// DetermineStatus merges the rule engine's finding with the external
// verdict into one report status. A nil aiResult means the analysis service
// was unavailable. Only full agreement auto-resolves: any disagreement
// between the two signals, or a missing signal, defers to human review.
func DetermineStatus(rule *RuleAnalysisResult, aiResult *aiclient.AnalysisResult) string {
	if aiResult == nil {
		return models.ReportStatusEscalated
	}

	switch {
	case rule.HasViolations && aiResult.IsCheating():
		return models.ReportStatusAutoFlagged
	case !rule.HasViolations && !aiResult.IsCheating():
		return models.ReportStatusDismissed
	default:
		return models.ReportStatusEscalated
	}
}
