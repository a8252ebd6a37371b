package notify

import (
	"log/slog"

	"github.com/google/uuid"
)

// Sender delivers a message to a user. Delivery is fire-and-report: a false
// return means the message did not go out, and callers decide whether that
// matters.
type Sender interface {
	Send(userID uuid.UUID, message string) bool
}

// SlogSender logs notifications instead of delivering them. It stands in
// until a push transport is wired up.
type SlogSender struct{}

func NewSlogSender() *SlogSender {
	return &SlogSender{}
}

func (s *SlogSender) Send(userID uuid.UUID, message string) bool {
	slog.Info("user notification", "user_id", userID.String(), "message", message)
	return true
}
