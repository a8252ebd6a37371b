package anticheat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caroarena/moderation-backend/internal/models"
)

const (
	// winLength is the unbroken run that wins a caro game.
	winLength = 5

	// minMoveInterval is the floor below which a move is too fast to be human.
	minMoveInterval = 300 * time.Millisecond

	// idleThreshold and burstAfterIdle describe the "long idle, then instant
	// reply" pattern typical of a player consulting an engine.
	idleThreshold  = 60 * time.Second
	burstAfterIdle = 1 * time.Second
)

// Engine runs the rule-based violation checks over a match's move log and
// terminal board. All checks are pure; the engine holds no state.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// AnalyzeMatch runs all three checks and aggregates their findings into a
// single result. Violations keep the fixed category order: multiple moves,
// impossible win, timing anomalies.
func (e *Engine) AnalyzeMatch(match *models.Match) (*RuleAnalysisResult, error) {
	moves, err := match.MoveList()
	if err != nil {
		return nil, err
	}
	board, err := match.Board()
	if err != nil {
		return nil, err
	}

	multiMoves := e.CheckMultipleMoves(moves)
	impossible := e.CheckImpossibleWins(board)
	timing := e.CheckTimingAnomalies(moves)

	violations := make([]Violation, 0, len(multiMoves)+len(impossible)+len(timing))
	violations = append(violations, multiMoves...)
	violations = append(violations, impossible...)
	violations = append(violations, timing...)

	categories := 0
	for _, vs := range [][]Violation{multiMoves, impossible, timing} {
		if len(vs) > 0 {
			categories++
		}
	}

	if len(violations) == 0 {
		result := NoViolations()
		result.Metadata = map[string]interface{}{"moves_analyzed": len(moves)}
		return result, nil
	}

	reasons := make([]string, len(violations))
	for i, v := range violations {
		reasons[i] = v.Description
	}

	return &RuleAnalysisResult{
		HasViolations: true,
		Violations:    violations,
		Confidence:    gradeConfidence(categories),
		ReasonResult:  strings.Join(reasons, " "),
		Metadata: map[string]interface{}{
			"moves_analyzed":     len(moves),
			"violation_count":    len(violations),
			"categories_flagged": categories,
		},
	}, nil
}

// gradeConfidence maps the number of fired categories to a confidence grade.
// Zero categories never reaches here (the clean path returns high directly).
func gradeConfidence(categories int) string {
	switch {
	case categories <= 0:
		return ConfidenceHigh
	case categories == 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CheckMultipleMoves flags every maximal run of two or more consecutive
// moves by the same player. One violation per run, not per move.
func (e *Engine) CheckMultipleMoves(moves []models.Move) []Violation {
	var violations []Violation
	i := 0
	for i < len(moves) {
		j := i
		for j+1 < len(moves) && moves[j+1].Player == moves[i].Player {
			j++
		}
		if runLen := j - i + 1; runLen >= 2 {
			indices := make([]int, 0, runLen)
			for k := i; k <= j; k++ {
				indices = append(indices, k)
			}
			violations = append(violations, Violation{
				Type: ViolationMultipleMoves,
				Description: fmt.Sprintf("Player %s made %d consecutive moves without an opponent response (moves %d-%d).",
					moves[i].Player, runLen, i, j),
				Details: map[string]interface{}{
					"player":       moves[i].Player,
					"run_length":   runLen,
					"move_indices": indices,
				},
			})
		}
		i = j + 1
	}
	return violations
}

// CheckImpossibleWins flags the board when both players simultaneously hold
// an unbroken run of five. A legal game ends the moment one player wins, so
// two winners means the recorded match is not a legal game.
func (e *Engine) CheckImpossibleWins(board map[string]string) []Violation {
	winnerSet := map[string]bool{}
	for key, mark := range board {
		x, y, ok := parseCoord(key)
		if !ok || mark == "" {
			continue
		}
		for _, dir := range [][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}} {
			// Only count a run from its first cell.
			if board[coordKey(x-dir[0], y-dir[1])] == mark {
				continue
			}
			length := 0
			for board[coordKey(x+length*dir[0], y+length*dir[1])] == mark {
				length++
			}
			if length >= winLength {
				winnerSet[mark] = true
			}
		}
	}

	if len(winnerSet) < 2 {
		return nil
	}

	winners := make([]string, 0, len(winnerSet))
	for w := range winnerSet {
		winners = append(winners, w)
	}
	sort.Strings(winners)

	return []Violation{{
		Type: ViolationImpossibleWin,
		Description: fmt.Sprintf("Final board shows simultaneous winning lines for players %s.",
			strings.Join(winners, " and ")),
		Details: map[string]interface{}{"winners": winners},
	}}
}

// CheckTimingAnomalies flags inter-move deltas that are too fast to be human
// or that follow the long-idle-then-instant pattern. One violation per
// flagged delta, carrying the move index and the delta.
func (e *Engine) CheckTimingAnomalies(moves []models.Move) []Violation {
	var violations []Violation
	for i := 1; i < len(moves); i++ {
		delta := moves[i].Timestamp.Sub(moves[i-1].Timestamp)
		switch {
		case delta < minMoveInterval:
			violations = append(violations, Violation{
				Type: ViolationTimingAnomaly,
				Description: fmt.Sprintf("Move %d was played %dms after the previous move, below the human floor.",
					i, delta.Milliseconds()),
				Details: map[string]interface{}{
					"move_index": i,
					"delta_ms":   delta.Milliseconds(),
					"pattern":    "too_fast",
				},
			})
		case i >= 2 && moves[i-1].Timestamp.Sub(moves[i-2].Timestamp) > idleThreshold && delta < burstAfterIdle:
			violations = append(violations, Violation{
				Type: ViolationTimingAnomaly,
				Description: fmt.Sprintf("Move %d was played %dms after a long idle period.",
					i, delta.Milliseconds()),
				Details: map[string]interface{}{
					"move_index": i,
					"delta_ms":   delta.Milliseconds(),
					"pattern":    "idle_then_instant",
				},
			})
		}
	}
	return violations
}

func coordKey(x, y int) string {
	return strconv.Itoa(x) + "," + strconv.Itoa(y)
}

func parseCoord(key string) (int, int, bool) {
	parts := strings.SplitN(key, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}
