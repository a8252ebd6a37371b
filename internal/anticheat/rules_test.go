package anticheat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// movesAt builds a move list from (player, secondsAfterStart) pairs at
// distinct coordinates.
func movesAt(spec ...struct {
	Player string
	After  time.Duration
}) []models.Move {
	moves := make([]models.Move, len(spec))
	for i, s := range spec {
		moves[i] = models.Move{
			X:         i,
			Y:         i % 3,
			Player:    s.Player,
			Timestamp: testStart.Add(s.After),
		}
	}
	return moves
}

func mv(player string, after time.Duration) struct {
	Player string
	After  time.Duration
} {
	return struct {
		Player string
		After  time.Duration
	}{player, after}
}

func buildMatch(t *testing.T, moves []models.Move, board map[string]string) *models.Match {
	t.Helper()
	moveJSON, err := json.Marshal(moves)
	if err != nil {
		t.Fatalf("marshal moves: %v", err)
	}
	boardJSON, err := json.Marshal(board)
	if err != nil {
		t.Fatalf("marshal board: %v", err)
	}
	return &models.Match{
		ID:         uuid.New(),
		Player1ID:  uuid.New(),
		Player2ID:  uuid.New(),
		Moves:      datatypes.JSON(moveJSON),
		BoardState: datatypes.JSON(boardJSON),
	}
}

// row places five consecutive marks for one player along y=row.
func row(board map[string]string, mark string, rowY, fromX, count int) {
	for i := 0; i < count; i++ {
		board[coordKey(fromX+i, rowY)] = mark
	}
}

func TestCheckMultipleMovesFlagsOnePerRun(t *testing.T) {
	engine := NewEngine()

	// X, X, X is one run; O; then X, X is a second run.
	moves := movesAt(
		mv("X", 0), mv("X", 5*time.Second), mv("X", 10*time.Second),
		mv("O", 15*time.Second),
		mv("X", 20*time.Second), mv("X", 25*time.Second),
	)

	violations := engine.CheckMultipleMoves(moves)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations (one per maximal run), got %d", len(violations))
	}

	first := violations[0]
	if first.Type != ViolationMultipleMoves {
		t.Errorf("unexpected type %q", first.Type)
	}
	if got := first.Details["run_length"]; got != 3 {
		t.Errorf("expected run_length 3, got %v", got)
	}
	if indices, ok := first.Details["move_indices"].([]int); !ok || len(indices) != 3 || indices[0] != 0 {
		t.Errorf("unexpected move_indices %v", first.Details["move_indices"])
	}
	if got := violations[1].Details["run_length"]; got != 2 {
		t.Errorf("expected second run_length 2, got %v", got)
	}
}

func TestCheckMultipleMovesCleanAlternation(t *testing.T) {
	engine := NewEngine()
	moves := movesAt(
		mv("X", 0), mv("O", 5*time.Second), mv("X", 10*time.Second), mv("O", 15*time.Second),
	)
	if violations := engine.CheckMultipleMoves(moves); len(violations) != 0 {
		t.Fatalf("expected no violations for alternating players, got %d", len(violations))
	}
}

func TestCheckImpossibleWinsBothPlayers(t *testing.T) {
	engine := NewEngine()

	board := map[string]string{}
	row(board, "X", 0, 0, 5)
	row(board, "O", 3, 2, 5)

	violations := engine.CheckImpossibleWins(board)
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Type != ViolationImpossibleWin {
		t.Errorf("unexpected type %q", v.Type)
	}
	winners, ok := v.Details["winners"].([]string)
	if !ok || len(winners) != 2 || winners[0] != "O" || winners[1] != "X" {
		t.Errorf("expected winners [O X], got %v", v.Details["winners"])
	}
	if !strings.Contains(v.Description, "O") || !strings.Contains(v.Description, "X") {
		t.Errorf("description should name both players: %q", v.Description)
	}
}

func TestCheckImpossibleWinsSingleWinner(t *testing.T) {
	engine := NewEngine()

	board := map[string]string{}
	row(board, "X", 0, 0, 5)
	row(board, "O", 3, 2, 4)

	if violations := engine.CheckImpossibleWins(board); len(violations) != 0 {
		t.Fatalf("one winner is a normal game, got %d violations", len(violations))
	}
	if violations := engine.CheckImpossibleWins(map[string]string{}); len(violations) != 0 {
		t.Fatalf("empty board should be clean, got %d violations", len(violations))
	}
}

func TestCheckImpossibleWinsDiagonal(t *testing.T) {
	engine := NewEngine()

	board := map[string]string{}
	for i := 0; i < 5; i++ {
		board[coordKey(i, i)] = "X"
	}
	row(board, "O", 8, 0, 6) // six in a row still one win

	violations := engine.CheckImpossibleWins(board)
	if len(violations) != 1 {
		t.Fatalf("expected one violation for diagonal + horizontal double win, got %d", len(violations))
	}
}

func TestCheckTimingAnomaliesTooFast(t *testing.T) {
	engine := NewEngine()

	moves := movesAt(
		mv("X", 0),
		mv("O", 100*time.Millisecond), // below the human floor
		mv("X", 5*time.Second),
	)

	violations := engine.CheckTimingAnomalies(moves)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Type != ViolationTimingAnomaly {
		t.Errorf("unexpected type %q", v.Type)
	}
	if got := v.Details["move_index"]; got != 1 {
		t.Errorf("expected move_index 1, got %v", got)
	}
	if got := v.Details["delta_ms"]; got != int64(100) {
		t.Errorf("expected delta_ms 100, got %v", got)
	}
	if got := v.Details["pattern"]; got != "too_fast" {
		t.Errorf("expected pattern too_fast, got %v", got)
	}
}

func TestCheckTimingAnomaliesIdleThenInstant(t *testing.T) {
	engine := NewEngine()

	// A long think followed by an instant reply.
	moves := movesAt(
		mv("X", 0),
		mv("O", 90*time.Second),
		mv("X", 90*time.Second+700*time.Millisecond),
	)

	violations := engine.CheckTimingAnomalies(moves)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if got := violations[0].Details["pattern"]; got != "idle_then_instant" {
		t.Errorf("expected pattern idle_then_instant, got %v", got)
	}
	if got := violations[0].Details["move_index"]; got != 2 {
		t.Errorf("expected move_index 2, got %v", got)
	}
}

func TestAnalyzeMatchCleanIsHighConfidence(t *testing.T) {
	engine := NewEngine()

	moves := movesAt(
		mv("X", 0), mv("O", 5*time.Second), mv("X", 12*time.Second), mv("O", 20*time.Second),
	)
	match := buildMatch(t, moves, map[string]string{"0,0": "X", "1,1": "O"})

	result, err := engine.AnalyzeMatch(match)
	if err != nil {
		t.Fatalf("AnalyzeMatch: %v", err)
	}
	if result.HasViolations {
		t.Error("clean match should have no violations")
	}
	if result.Confidence != ConfidenceHigh {
		t.Errorf("expected high confidence, got %q", result.Confidence)
	}
	if result.ReasonResult != NoAnomaliesReason {
		t.Errorf("expected canonical clean reason, got %q", result.ReasonResult)
	}
}

func TestAnalyzeMatchConfidenceGrading(t *testing.T) {
	engine := NewEngine()

	// One category: a single consecutive-move run.
	oneCat := movesAt(
		mv("X", 0), mv("X", 5*time.Second), mv("O", 10*time.Second),
	)
	match := buildMatch(t, oneCat, map[string]string{})
	result, err := engine.AnalyzeMatch(match)
	if err != nil {
		t.Fatalf("AnalyzeMatch: %v", err)
	}
	if !result.HasViolations || result.Confidence != ConfidenceMedium {
		t.Errorf("one fired category should grade medium, got %q", result.Confidence)
	}

	// Two categories: consecutive moves plus a too-fast move.
	twoCat := movesAt(
		mv("X", 0), mv("X", 50*time.Millisecond), mv("O", 10*time.Second),
	)
	match = buildMatch(t, twoCat, map[string]string{})
	result, err = engine.AnalyzeMatch(match)
	if err != nil {
		t.Fatalf("AnalyzeMatch: %v", err)
	}
	if result.Confidence != ConfidenceLow {
		t.Errorf("two fired categories should grade low, got %q", result.Confidence)
	}
}

func TestAnalyzeMatchReasonOrder(t *testing.T) {
	engine := NewEngine()

	// Fire multiple-moves and timing; the synthesis must mention the
	// consecutive run before the timing anomaly.
	moves := movesAt(
		mv("X", 0), mv("X", 5*time.Second),
		mv("O", 5*time.Second+100*time.Millisecond),
	)
	match := buildMatch(t, moves, map[string]string{})

	result, err := engine.AnalyzeMatch(match)
	if err != nil {
		t.Fatalf("AnalyzeMatch: %v", err)
	}
	runPos := strings.Index(result.ReasonResult, "consecutive moves")
	timingPos := strings.Index(result.ReasonResult, "below the human floor")
	if runPos == -1 || timingPos == -1 {
		t.Fatalf("reason missing expected sentences: %q", result.ReasonResult)
	}
	if runPos > timingPos {
		t.Errorf("multiple-moves sentence must precede timing sentence: %q", result.ReasonResult)
	}
}

func TestAnalyzeMatchRejectsCorruptMoveLog(t *testing.T) {
	engine := NewEngine()
	match := &models.Match{ID: uuid.New(), Moves: datatypes.JSON(`{"not":"a list"}`)}
	if _, err := engine.AnalyzeMatch(match); err == nil {
		t.Fatal("expected error for corrupt move log")
	}
}
