// Package events delivers the once-per-session outcome notification to
// statistics and logging consumers.
package events

import (
	"context"
	"time"

	"github.com/cyberinferno/trivia-royale/logger"
)

// Envelope describes one finished session.
type Envelope struct {
	SessionID string    `json:"session_id"`
	HasWinner bool      `json:"has_winner"`
	Winner    string    `json:"winner,omitempty"`
	Rounds    int       `json:"rounds"`
	Players   int       `json:"players"`
	EndedAt   time.Time `json:"ended_at"`
}

// Sink consumes session outcomes. SessionEnded is fired exactly once per
// session; a sink failure is logged by the caller and never affects the
// game loop or other sinks.
type Sink interface {
	SessionEnded(ctx context.Context, env Envelope) error
}

// LogSink writes session outcomes to the structured log. It is the sink that
// is always on.
type LogSink struct {
	Logger logger.Logger
}

// SessionEnded implements Sink.
func (s *LogSink) SessionEnded(_ context.Context, env Envelope) error {
	s.Logger.Info("session ended",
		logger.Field{Key: "session_id", Value: env.SessionID},
		logger.Field{Key: "has_winner", Value: env.HasWinner},
		logger.Field{Key: "winner", Value: env.Winner},
		logger.Field{Key: "rounds", Value: env.Rounds},
		logger.Field{Key: "players", Value: env.Players})
	return nil
}
