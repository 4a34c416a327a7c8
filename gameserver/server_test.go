package gameserver

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberinferno/trivia-royale/discovery"
	"github.com/cyberinferno/trivia-royale/events"
	"github.com/cyberinferno/trivia-royale/logger"
	"github.com/cyberinferno/trivia-royale/stats"
)

// fixedSource always expects the same answer.
type fixedSource struct {
	answer bool
}

func (f fixedSource) RandomQuestion() (string, bool) {
	return "water is wet", f.answer
}

// captureSink records session envelopes.
type captureSink struct {
	ch chan events.Envelope
}

func (c *captureSink) SessionEnded(_ context.Context, env events.Envelope) error {
	select {
	case c.ch <- env:
	default:
	}
	return nil
}

// player dials the join port, registers, answers every question with the
// same token, and records everything the server sends.
type player struct {
	mu         sync.Mutex
	transcript strings.Builder
	done       chan struct{}
}

func dialPlayer(t *testing.T, addr, name, answer string) *player {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, err = conn.Write([]byte(name + "\n"))
	require.NoError(t, err)

	p := &player{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer conn.Close()

		buf := make([]byte, 4096)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
			n, err := conn.Read(buf)
			if err != nil {
				return
			}

			msg := string(buf[:n])
			p.mu.Lock()
			p.transcript.WriteString(msg)
			p.mu.Unlock()

			if strings.Contains(msg, "True or false") {
				_, _ = conn.Write([]byte(answer))
			}
			if strings.Contains(msg, "Game over!") {
				return
			}
		}
	}()

	return p
}

func (p *player) received() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript.String()
}

func TestServer_FullSession(t *testing.T) {
	// Stand in for a LAN peer listening for discovery offers.
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	_, portStr, err := net.SplitHostPort(pc.LocalAddr().String())
	require.NoError(t, err)
	broadcastPort, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BroadcastAddr = "127.0.0.1"
	cfg.BroadcastPort = broadcastPort
	cfg.BroadcastInterval = 50 * time.Millisecond
	cfg.JoinWindow = 750 * time.Millisecond
	cfg.AnswerDeadline = 750 * time.Millisecond
	require.NoError(t, cfg.Validate())

	sink := &captureSink{ch: make(chan events.Envelope, 4)}
	srv := NewServer(cfg, logger.Nop(), fixedSource{answer: true})
	srv.Stats = stats.NewRecorder(logger.Nop())
	srv.Sinks = append(srv.Sinks, sink)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- srv.Run(ctx) }()

	// Discover the join port the way a real client would.
	buf := make([]byte, 64)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	pkt, err := discovery.Decode(buf[:n])
	require.NoError(t, err)
	require.NotZero(t, pkt.TCPPort)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(pkt.TCPPort)))
	ann := dialPlayer(t, addr, "Ann", "Y")
	bob := dialPlayer(t, addr, "Bob", "N")

	waitFor := func(p *player, who string) {
		select {
		case <-p.done:
		case <-time.After(10 * time.Second):
			t.Fatalf("%s never saw the game end", who)
		}
	}
	waitFor(ann, "Ann")
	waitFor(bob, "Bob")

	// Both players saw the roster, the question, and the terminal message.
	annLog := ann.received()
	assert.Contains(t, annLog, "Player 1: Ann")
	assert.Contains(t, annLog, "Player 2: Bob")
	assert.Contains(t, annLog, "True or false: water is wet")
	assert.Contains(t, annLog, "Congratulations to the winner: Ann")

	bobLog := bob.received()
	assert.Contains(t, bobLog, "Ann is correct! Ann Wins!")
	assert.Contains(t, bobLog, "Bob is incorrect!")
	assert.Contains(t, bobLog, "Game over!")

	select {
	case env := <-sink.ch:
		assert.True(t, env.HasWinner)
		assert.Equal(t, "Ann", env.Winner)
		assert.Equal(t, 1, env.Rounds)
		assert.Equal(t, 2, env.Players)
		assert.NotEmpty(t, env.SessionID)
	case <-time.After(5 * time.Second):
		t.Fatal("no session envelope delivered")
	}

	summary := srv.Stats.Summary()
	assert.Equal(t, 1, summary.GamesPlayed)
	assert.Equal(t, "Ann", summary.BestPlayer)

	cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after cancellation")
	}
}
