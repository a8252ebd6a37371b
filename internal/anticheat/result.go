package anticheat

// Violation categories, in the fixed order they are reported.
const (
	ViolationMultipleMoves = "multiple_moves"
	ViolationImpossibleWin = "impossible_win"
	ViolationTimingAnomaly = "timing_anomaly"
)

// Analysis confidence grades. Confidence measures how sure the engine is
// about its reading of the match, not how likely cheating is: independent
// signal categories stacking up means a murkier root cause.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// NoAnomaliesReason is the canonical synthesis for a clean match.
const NoAnomaliesReason = "No anomalies detected in match play."

type Violation struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// RuleAnalysisResult is the immutable outcome of the rule checks for one match.
type RuleAnalysisResult struct {
	HasViolations bool                   `json:"has_violations"`
	Violations    []Violation            `json:"violations"`
	Confidence    string                 `json:"confidence"`
	ReasonResult  string                 `json:"reason_result"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// NoViolations returns the canonical clean result.
func NoViolations() *RuleAnalysisResult {
	return &RuleAnalysisResult{
		HasViolations: false,
		Violations:    []Violation{},
		Confidence:    ConfidenceHigh,
		ReasonResult:  NoAnomaliesReason,
	}
}
