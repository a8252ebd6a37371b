package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Move is a single placement in a caro match, in play order.
type Move struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Player    string    `json:"player"`
	Timestamp time.Time `json:"timestamp"`
}

// Match stores a finished game: the chronological move log and the
// terminal board as a sparse "x,y" -> mark mapping.
type Match struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Player1ID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"player1_id"`
	Player2ID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"player2_id"`
	Winner     string         `gorm:"size:10" json:"winner"`
	Moves      datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"moves"`
	BoardState datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"board_state"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MoveList decodes the JSONB move log.
func (m *Match) MoveList() ([]Move, error) {
	if len(m.Moves) == 0 {
		return nil, nil
	}
	var moves []Move
	if err := json.Unmarshal(m.Moves, &moves); err != nil {
		return nil, fmt.Errorf("invalid move log for match %s: %w", m.ID, err)
	}
	return moves, nil
}

// Board decodes the terminal board state.
func (m *Match) Board() (map[string]string, error) {
	if len(m.BoardState) == 0 {
		return map[string]string{}, nil
	}
	var board map[string]string
	if err := json.Unmarshal(m.BoardState, &board); err != nil {
		return nil, fmt.Errorf("invalid board state for match %s: %w", m.ID, err)
	}
	return board, nil
}
