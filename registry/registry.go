// Package registry tracks the players connected to one game session. It owns
// every player's connection from registration until the session is cleared,
// and guarantees display names are unique within the session.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cyberinferno/trivia-royale/logger"
)

// suffixPoolSize is the number of disambiguation suffixes available per
// session. The pool holds the integers 1..suffixPoolSize, consumed
// front-to-back and never reused until the session is cleared.
const suffixPoolSize = 500

var (
	// ErrEmptyName is returned when a client sends a blank display name.
	ErrEmptyName = errors.New("registry: empty display name")

	// ErrSuffixPoolExhausted is returned when no disambiguation suffix is
	// left to resolve a name collision.
	ErrSuffixPoolExhausted = errors.New("registry: suffix pool exhausted")
)

// Player is one registered participant: the connection identity, the unique
// display name, and the owned connection. The registry owns the connection
// exclusively until Clear closes it.
type Player struct {
	ID   uint32
	Addr string
	Name string
	Conn net.Conn
}

// Registry is the session-scoped player store. Registrations may run
// concurrently from the acceptor's worker pool; the uniqueness check, suffix
// consumption, and insert form one critical section under a single mutex.
type Registry struct {
	log    logger.Logger
	nextID atomic.Uint32

	mu       sync.Mutex
	players  []*Player
	names    map[string]struct{}
	suffixes []int
}

// NewRegistry creates an empty Registry with a full suffix pool.
//
// Parameters:
//   - log: Destination for registration diagnostics
//
// Returns:
//   - A Registry ready for concurrent Register calls
func NewRegistry(log logger.Logger) *Registry {
	r := &Registry{log: log}
	r.reset()
	return r
}

// reset reinitializes session state; caller must hold r.mu or have exclusive
// access.
func (r *Registry) reset() {
	r.players = nil
	r.names = make(map[string]struct{})
	r.suffixes = make([]int, suffixPoolSize)
	for i := range r.suffixes {
		r.suffixes[i] = i + 1
	}
}

// Register reads a newline-terminated display name from conn and inserts the
// player, disambiguating name collisions with the next pool suffix. No
// acknowledgement is sent back. The name read blocks with no deadline; a
// stalled client occupies only its caller.
//
// On a read failure or blank name the connection is closed and an error
// returned; other registrations are unaffected.
//
// Parameters:
//   - conn: The accepted connection, ownership transfers to the registry on success
//
// Returns:
//   - The registered player with its final display name
//   - An error if the name could not be read or no suffix remained
func (r *Registry) Register(conn net.Conn) (*Player, error) {
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: read display name from %s: %w", conn.RemoteAddr(), err)
	}

	name := strings.TrimSpace(line)
	if name == "" {
		conn.Close()
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	final := name
	for {
		if _, taken := r.names[final]; !taken {
			break
		}

		if len(r.suffixes) == 0 {
			conn.Close()
			return nil, ErrSuffixPoolExhausted
		}

		final = name + strconv.Itoa(r.suffixes[0])
		r.suffixes = r.suffixes[1:]
	}

	p := &Player{
		ID:   r.nextID.Add(1),
		Addr: conn.RemoteAddr().String(),
		Name: final,
		Conn: conn,
	}
	r.players = append(r.players, p)
	r.names[final] = struct{}{}

	r.log.Info("player registered",
		logger.Field{Key: "player", Value: final},
		logger.Field{Key: "addr", Value: p.Addr})

	return p, nil
}

// Players returns a snapshot of all registered players in registration
// order. The round-1 roster numbering follows this order.
//
// Returns:
//   - A copy of the player slice; mutating it does not affect the registry
func (r *Registry) Players() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Clear closes every connection and resets the registry for the next
// session, refilling the suffix pool.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if err := p.Conn.Close(); err != nil {
			r.log.Debug("closing player connection",
				logger.Field{Key: "player", Value: p.Name},
				logger.Field{Key: "error", Value: err})
		}
	}

	r.reset()
}
