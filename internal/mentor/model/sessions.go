package model

import "context"

// SessionRepository stores dialogue history for clients that send single
// messages with a session identifier instead of resending the full history.
type SessionRepository interface {
	// AddTurn appends a turn to the session history.
	AddTurn(ctx context.Context, sessionID string, turn Turn) error

	// LoadHistory retrieves the session history in order.
	LoadHistory(ctx context.Context, sessionID string) ([]Turn, error)

	// ClearHistory removes all history for a session.
	ClearHistory(ctx context.Context, sessionID string) error

	// TurnCount returns the number of stored turns.
	TurnCount(ctx context.Context, sessionID string) (int, error)
}
