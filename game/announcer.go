package game

import (
	"strings"

	"github.com/cyberinferno/trivia-royale/logger"
	"github.com/cyberinferno/trivia-royale/registry"
)

// Announcer delivers UTF-8 text payloads to sets of player connections.
// A send failure for one player is logged with the display name and never
// affects delivery to the others.
type Announcer struct {
	Logger logger.Logger
}

// NewAnnouncer creates an Announcer.
func NewAnnouncer(log logger.Logger) *Announcer {
	return &Announcer{Logger: log}
}

// Broadcast sends text to every player in the set, appending a trailing
// newline if missing. Per-connection failures are swallowed after logging.
//
// Parameters:
//   - players: Read-only snapshot of the target connections
//   - text: The payload to deliver
func (a *Announcer) Broadcast(players []*registry.Player, text string) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	payload := []byte(text)
	for _, p := range players {
		if _, err := p.Conn.Write(payload); err != nil {
			a.Logger.Warn("send to player failed",
				logger.Field{Key: "player", Value: p.Name},
				logger.Field{Key: "error", Value: err})
		}
	}
}
