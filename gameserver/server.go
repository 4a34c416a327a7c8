package gameserver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/cyberinferno/trivia-royale/discovery"
	"github.com/cyberinferno/trivia-royale/events"
	"github.com/cyberinferno/trivia-royale/game"
	"github.com/cyberinferno/trivia-royale/logger"
	"github.com/cyberinferno/trivia-royale/registry"
	"github.com/cyberinferno/trivia-royale/stats"
)

// Server runs game sessions back to back until its context is cancelled.
// Each session owns a freshly bound TCP port announced over discovery; the
// player registry is cleared between sessions.
type Server struct {
	Config Config
	Logger logger.Logger
	Clock  clockwork.Clock
	Source game.QuestionSource

	// Sinks receive the outcome of every session, exactly once each.
	Sinks []events.Sink

	// Stats, when set, records round scores and session summaries.
	Stats *stats.Recorder

	registry *registry.Registry
}

// NewServer creates a Server over the given question source with a real
// clock and an always-on log sink.
//
// Parameters:
//   - cfg: Validated configuration
//   - log: Root logger; sessions derive their own
//   - source: The trivia question supplier
//
// Returns:
//   - A Server ready for Run
func NewServer(cfg Config, log logger.Logger, source game.QuestionSource) *Server {
	return &Server{
		Config:   cfg,
		Logger:   log,
		Clock:    clockwork.NewRealClock(),
		Source:   source,
		Sinks:    []events.Sink{&events.LogSink{Logger: log}},
		registry: registry.NewRegistry(log),
	}
}

// Run loops sessions until ctx is cancelled. Only startup-level failures
// (no bindable port, unopenable broadcast socket) are returned; everything
// that happens to individual connections stays inside the session.
//
// Parameters:
//   - ctx: Cancels the server between or during sessions
//
// Returns:
//   - A startup error, or nil on clean shutdown
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := s.runSession(ctx); err != nil {
			return err
		}

		if ctx.Err() != nil {
			s.Logger.Info("server shutting down")
			return nil
		}
	}
}

// runSession drives one full Lobby → rounds → teardown cycle.
func (s *Server) runSession(ctx context.Context) error {
	sessionID := uuid.New().String()
	log := s.Logger.With(logger.Field{Key: "session_id", Value: sessionID})

	ln, port, err := s.bindListener(log)
	if err != nil {
		return err
	}
	defer ln.Close()

	log.Info("lobby open", logger.Field{Key: "tcp_port", Value: port})

	lobbyCtx, closeLobby := context.WithCancel(ctx)
	defer closeLobby()

	broadcastAddr := net.JoinHostPort(s.Config.BroadcastAddr, strconv.Itoa(s.Config.BroadcastPort))
	b := discovery.NewBroadcaster(log, s.Clock, broadcastAddr, s.Config.BroadcastInterval, s.Config.ServerName, uint16(port))

	g, gctx := errgroup.WithContext(lobbyCtx)
	g.Go(func() error { return b.Run(gctx) })
	g.Go(func() error { return s.acceptPlayers(gctx, closeLobby, ln, log) })

	// Accept blocks without a deadline; closing the listener is what ends it.
	go func() {
		<-gctx.Done()
		ln.Close()
	}()

	if err := g.Wait(); err != nil {
		return fmt.Errorf("gameserver: lobby failed: %w", err)
	}

	roster := s.registry.Players()
	log.Info("join window closed", logger.Field{Key: "players", Value: len(roster)})

	orch := &game.Orchestrator{
		Logger:         log,
		Source:         s.Source,
		Collector:      game.NewCollector(log),
		Announcer:      game.NewAnnouncer(log),
		ServerName:     s.Config.ServerName,
		AnswerDeadline: s.Config.AnswerDeadline,
		MaxRounds:      s.Config.MaxRounds,
	}
	if s.Stats != nil {
		orch.Observer = s.Stats
	}

	result := orch.Run(ctx, roster)

	env := events.Envelope{
		SessionID: sessionID,
		HasWinner: result.Outcome.HasWinner(),
		Winner:    result.Outcome.Winner,
		Rounds:    result.Rounds,
		Players:   len(roster),
		EndedAt:   s.Clock.Now(),
	}
	for _, sink := range s.Sinks {
		if err := sink.SessionEnded(ctx, env); err != nil {
			log.Warn("outcome sink failed", logger.Field{Key: "error", Value: err})
		}
	}

	if s.Stats != nil {
		s.Stats.SessionFinished(result.Outcome.Winner, result.Rounds)
	}

	s.registry.Clear()
	log.Info("session torn down")
	return nil
}

// bindListener tries random ports until one binds or the attempt budget is
// spent. Exhausting the budget is fatal to startup.
func (s *Server) bindListener(log logger.Logger) (net.Listener, int, error) {
	for attempt := 1; attempt <= s.Config.BindAttempts; attempt++ {
		port := 1024 + rand.Intn(65536-1024)
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			return ln, port, nil
		}

		log.Warn("port bind failed, trying another",
			logger.Field{Key: "port", Value: port},
			logger.Field{Key: "attempt", Value: attempt},
			logger.Field{Key: "error", Value: err})
	}

	return nil, 0, fmt.Errorf("gameserver: no bindable port after %d attempts", s.Config.BindAttempts)
}

// acceptPlayers accepts connections until the join window closes. The window
// starts at the first accepted connection; registration itself runs on a
// bounded worker pool so a stalled client cannot block the accept loop.
func (s *Server) acceptPlayers(ctx context.Context, closeLobby context.CancelFunc, ln net.Listener, log logger.Logger) error {
	sem := semaphore.NewWeighted(int64(s.Config.RegistrationWorkers))
	var windowOnce sync.Once

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			log.Warn("accept failed", logger.Field{Key: "error", Value: err})
			continue
		}

		windowOnce.Do(func() {
			log.Info("first player connected, join window started",
				logger.Field{Key: "window", Value: s.Config.JoinWindow.String()})
			go func() {
				select {
				case <-s.Clock.After(s.Config.JoinWindow):
					closeLobby()
				case <-ctx.Done():
				}
			}()
		})

		if err := sem.Acquire(ctx, 1); err != nil {
			conn.Close()
			return nil
		}

		go func(conn net.Conn) {
			defer sem.Release(1)
			if _, err := s.registry.Register(conn); err != nil {
				log.Warn("registration failed", logger.Field{Key: "error", Value: err})
			}
		}(conn)
	}
}
