package game

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cyberinferno/trivia-royale/logger"
	"github.com/cyberinferno/trivia-royale/registry"
)

// answerReadLimit bounds one answer read. Answers are single tokens; anything
// longer is garbage and normalizes to NoResponse anyway.
const answerReadLimit = 64

// Collector gathers one answer per active player within a fixed deadline.
// Reads are issued concurrently so total round latency is bounded by the
// deadline regardless of player count; one player's stall never extends
// another's wait.
type Collector struct {
	Logger logger.Logger
}

// NewCollector creates a Collector.
func NewCollector(log logger.Logger) *Collector {
	return &Collector{Logger: log}
}

// Collect reads one answer token from every player, each read bounded by the
// shared deadline. It returns only after every read has resolved or timed
// out, with exactly one verdict per player: timeouts, connection errors, and
// unrecognized tokens all map to NoResponse. Outstanding reads past the
// deadline are abandoned, not retried, and the sockets stay open.
//
// Parameters:
//   - players: Read-only snapshot of the active player set
//   - deadline: How long all players collectively have to answer
//
// Returns:
//   - A map with a verdict for every player in players
func (c *Collector) Collect(players []*registry.Player, deadline time.Duration) map[*registry.Player]Verdict {
	verdicts := make(map[*registry.Player]Verdict, len(players))
	for _, p := range players {
		verdicts[p] = VerdictNoResponse
	}

	cutoff := time.Now().Add(deadline)

	var mu sync.Mutex
	var g errgroup.Group
	for _, p := range players {
		p := p
		g.Go(func() error {
			v := c.readAnswer(p, cutoff)
			mu.Lock()
			verdicts[p] = v
			mu.Unlock()
			return nil
		})
	}

	// Barrier: round evaluation must not start before every read resolved.
	_ = g.Wait()

	return verdicts
}

// readAnswer performs the single bounded read for one player.
func (c *Collector) readAnswer(p *registry.Player, cutoff time.Time) Verdict {
	if err := p.Conn.SetReadDeadline(cutoff); err != nil {
		c.Logger.Warn("setting answer deadline failed",
			logger.Field{Key: "player", Value: p.Name},
			logger.Field{Key: "error", Value: err})
		return VerdictNoResponse
	}
	// The connection outlives the round; later reads must block again.
	defer func() { _ = p.Conn.SetReadDeadline(time.Time{}) }()

	buf := make([]byte, answerReadLimit)
	n, err := p.Conn.Read(buf)
	if err != nil {
		c.Logger.Info("no answer from player",
			logger.Field{Key: "player", Value: p.Name},
			logger.Field{Key: "error", Value: err})
		return VerdictNoResponse
	}

	token := string(buf[:n])
	v := ParseAnswer(token)
	c.Logger.Debug("answer received",
		logger.Field{Key: "player", Value: p.Name},
		logger.Field{Key: "verdict", Value: v.String()})

	return v
}
