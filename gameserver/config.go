// Package gameserver runs trivia game sessions end to end: it binds the TCP
// join port, announces it over UDP discovery, fills the lobby during the
// join window, and hands the registered players to the round engine.
package gameserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyberinferno/trivia-royale/discovery"
)

// Config holds the tunable parameters of the game server. Zero values are
// not usable; start from DefaultConfig.
type Config struct {
	// ServerName is the display name sent in discovery offers and the
	// round-1 welcome. At most 32 bytes survive the offer packet.
	ServerName string

	// BroadcastAddr is the discovery destination host, normally the
	// limited broadcast address.
	BroadcastAddr string

	// BroadcastPort is the UDP port discovery offers are sent to.
	BroadcastPort int

	// BroadcastInterval is the delay between discovery offers.
	BroadcastInterval time.Duration

	// JoinWindow is how long the lobby keeps accepting players, measured
	// from the first accepted connection.
	JoinWindow time.Duration

	// AnswerDeadline bounds each round's answer collection.
	AnswerDeadline time.Duration

	// MaxRounds caps rounds per session; 0 means unlimited.
	MaxRounds int

	// RegistrationWorkers bounds concurrent registrations so one stalled
	// client cannot block acceptance of others.
	RegistrationWorkers int

	// BindAttempts is how many random TCP ports are tried before startup
	// fails.
	BindAttempts int

	// NATSURL enables the NATS outcome sink when non-empty.
	NATSURL string

	// NATSSubject overrides the outcome subject; empty uses the default.
	NATSSubject string
}

// DefaultConfig returns the stock configuration: 2s offer interval, 10s join
// window, 10s answer deadline, and 50 port bind attempts.
func DefaultConfig() Config {
	return Config{
		ServerName:          "Team Mystic",
		BroadcastAddr:       "255.255.255.255",
		BroadcastPort:       discovery.DefaultBroadcastPort,
		BroadcastInterval:   2 * time.Second,
		JoinWindow:          10 * time.Second,
		AnswerDeadline:      10 * time.Second,
		MaxRounds:           0,
		RegistrationWorkers: 30,
		BindAttempts:        50,
	}
}

// Validate reports the first configuration problem found, or nil.
func (c Config) Validate() error {
	if c.ServerName == "" {
		return errors.New("server name must not be empty")
	}
	if c.BroadcastPort < 1 || c.BroadcastPort > 65535 {
		return fmt.Errorf("invalid broadcast port (must be between 1-65535 inclusive): %d", c.BroadcastPort)
	}
	if c.BroadcastInterval <= 0 {
		return errors.New("broadcast interval must be positive")
	}
	if c.JoinWindow <= 0 {
		return errors.New("join window must be positive")
	}
	if c.AnswerDeadline <= 0 {
		return errors.New("answer deadline must be positive")
	}
	if c.MaxRounds < 0 {
		return errors.New("max rounds must not be negative")
	}
	if c.RegistrationWorkers < 1 {
		return errors.New("at least one registration worker is required")
	}
	if c.BindAttempts < 1 {
		return errors.New("at least one bind attempt is required")
	}
	return nil
}
