package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/cyberinferno/trivia-royale/logger"
)

// DefaultSubject is the NATS subject session outcomes are published to when
// no other subject is configured.
const DefaultSubject = "trivia.sessions.ended"

// NATSSink publishes session outcome envelopes as JSON to a NATS subject,
// for off-host statistics consumers. Connection loss is handled by the NATS
// client's reconnect machinery; publish failures surface as errors to the
// caller, which logs and moves on.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	log     logger.Logger
}

// NewNATSSink connects to the NATS server at url and returns a sink
// publishing to subject (DefaultSubject when empty).
//
// Parameters:
//   - log: Destination for connection state diagnostics
//   - url: NATS server URL, e.g. nats.DefaultURL
//   - subject: Target subject, or "" for DefaultSubject
//
// Returns:
//   - The connected sink, or an error if the connection failed
func NewNATSSink(log logger.Logger, url, subject string) (*NATSSink, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", logger.Field{Key: "error", Value: err})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", logger.Field{Key: "url", Value: nc.ConnectedUrl()})
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("events: connect to nats %s: %w", url, err)
	}

	return &NATSSink{conn: nc, subject: subject, log: log}, nil
}

// SessionEnded implements Sink by publishing the envelope as JSON.
func (s *NATSSink) SessionEnded(_ context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}

	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("events: publish to %s: %w", s.subject, err)
	}

	s.log.Debug("session outcome published",
		logger.Field{Key: "subject", Value: s.subject},
		logger.Field{Key: "session_id", Value: env.SessionID})
	return nil
}

// Close flushes and closes the NATS connection.
func (s *NATSSink) Close() {
	if err := s.conn.Drain(); err != nil {
		s.log.Warn("nats drain failed", logger.Field{Key: "error", Value: err})
	}
}
