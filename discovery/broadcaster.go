package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cyberinferno/trivia-royale/logger"
)

// DefaultBroadcastPort is the UDP port offer packets are sent to when no
// other port is configured.
const DefaultBroadcastPort = 13117

// Broadcaster periodically announces server presence over UDP while the
// lobby is open. It is side-effect only: it carries the server name and the
// TCP port players should join, and nothing else.
type Broadcaster struct {
	Logger logger.Logger
	Clock  clockwork.Clock

	// Addr is the destination address, e.g. "255.255.255.255:13117".
	Addr string

	// Packet is the offer sent on every tick.
	Packet Packet

	interval time.Duration
}

// NewBroadcaster creates a Broadcaster announcing serverName and tcpPort to
// addr every interval.
//
// Parameters:
//   - log: Destination for send diagnostics
//   - clock: Clock driving the tick loop (fake clocks in tests)
//   - addr: Destination UDP address, e.g. "255.255.255.255:13117"
//   - interval: Delay between offers
//   - serverName: Display name placed in the offer packet
//   - tcpPort: TCP join port placed in the offer packet
//
// Returns:
//   - A Broadcaster ready for Run
func NewBroadcaster(log logger.Logger, clock clockwork.Clock, addr string, interval time.Duration, serverName string, tcpPort uint16) *Broadcaster {
	return &Broadcaster{
		Logger:   log,
		Clock:    clock,
		Addr:     addr,
		Packet:   Packet{ServerName: serverName, TCPPort: tcpPort},
		interval: interval,
	}
}

// Run opens the broadcast socket and sends the offer packet once per
// interval until ctx is cancelled. Failing to open the socket is fatal and
// returned; individual send errors are logged and the loop continues on the
// next tick.
//
// Parameters:
//   - ctx: Cancelled when the join window closes
//
// Returns:
//   - An error only if the broadcast socket could not be opened
func (b *Broadcaster) Run(ctx context.Context) error {
	conn, err := net.Dial("udp4", b.Addr)
	if err != nil {
		return fmt.Errorf("discovery: open broadcast socket %s: %w", b.Addr, err)
	}
	defer conn.Close()

	b.Logger.Info("broadcasting server offer",
		logger.Field{Key: "addr", Value: b.Addr},
		logger.Field{Key: "tcp_port", Value: b.Packet.TCPPort},
		logger.Field{Key: "interval", Value: b.interval.String()})

	payload := b.Packet.Encode()
	ticker := b.Clock.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		if _, err := conn.Write(payload); err != nil {
			b.Logger.Warn("offer broadcast failed", logger.Field{Key: "error", Value: err})
		}

		select {
		case <-ctx.Done():
			b.Logger.Info("offer broadcasting stopped")
			return nil
		case <-ticker.Chan():
		}
	}
}
