package registry

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberinferno/trivia-royale/logger"
)

// register pushes name through one side of a pipe and registers the other.
func register(t *testing.T, r *Registry, name string) (*Player, error) {
	t.Helper()

	client, server := net.Pipe()
	go func() {
		_, _ = client.Write([]byte(name + "\n"))
	}()

	return r.Register(server)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("unique name is kept as-is", func(t *testing.T) {
		r := NewRegistry(logger.Nop())
		p, err := register(t, r, "Ann")
		require.NoError(t, err)
		assert.Equal(t, "Ann", p.Name)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("collision appends next pool suffix", func(t *testing.T) {
		r := NewRegistry(logger.Nop())

		first, err := register(t, r, "Ann")
		require.NoError(t, err)
		second, err := register(t, r, "Ann")
		require.NoError(t, err)

		assert.Equal(t, "Ann", first.Name)
		assert.Equal(t, "Ann1", second.Name)
	})

	t.Run("suffixes are consumed front-to-back and never reused", func(t *testing.T) {
		r := NewRegistry(logger.Nop())

		_, err := register(t, r, "Ann")
		require.NoError(t, err)
		second, err := register(t, r, "Ann")
		require.NoError(t, err)
		assert.Equal(t, "Ann1", second.Name)

		_, err = register(t, r, "Cid")
		require.NoError(t, err)
		collided, err := register(t, r, "Cid")
		require.NoError(t, err)
		assert.Equal(t, "Cid2", collided.Name)
	})

	t.Run("suffixed collision keeps consuming until unique", func(t *testing.T) {
		r := NewRegistry(logger.Nop())

		_, err := register(t, r, "Ann1")
		require.NoError(t, err)
		_, err = register(t, r, "Ann")
		require.NoError(t, err)
		third, err := register(t, r, "Ann")
		require.NoError(t, err)

		// "Ann1" is taken, so the pool advances to 2.
		assert.Equal(t, "Ann2", third.Name)
	})

	t.Run("blank name drops the connection", func(t *testing.T) {
		r := NewRegistry(logger.Nop())
		_, err := register(t, r, "   ")
		assert.ErrorIs(t, err, ErrEmptyName)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("disconnect before newline drops the connection", func(t *testing.T) {
		r := NewRegistry(logger.Nop())

		client, server := net.Pipe()
		go func() {
			_, _ = client.Write([]byte("Ann"))
			client.Close()
		}()

		_, err := r.Register(server)
		assert.Error(t, err)
		assert.Equal(t, 0, r.Len())
	})
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := NewRegistry(logger.Nop())
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client, server := net.Pipe()
			go func() {
				_, _ = client.Write([]byte("Ann\n"))
			}()
			_, err := r.Register(server)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	players := r.Players()
	require.Len(t, players, n)

	seen := make(map[string]struct{}, n)
	for _, p := range players {
		_, dup := seen[p.Name]
		assert.False(t, dup, "duplicate display name %q", p.Name)
		seen[p.Name] = struct{}{}
	}
}

func TestRegistry_PlayersOrderAndClear(t *testing.T) {
	r := NewRegistry(logger.Nop())

	for _, name := range []string{"Ann", "Bob", "Cid"} {
		_, err := register(t, r, name)
		require.NoError(t, err)
	}

	players := r.Players()
	require.Len(t, players, 3)
	assert.Equal(t, "Ann", players[0].Name)
	assert.Equal(t, "Bob", players[1].Name)
	assert.Equal(t, "Cid", players[2].Name)

	r.Clear()
	assert.Equal(t, 0, r.Len())

	// Pool is refilled: the first collision in the new session gets suffix 1.
	_, err := register(t, r, "Ann")
	require.NoError(t, err)
	again, err := register(t, r, "Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann1", again.Name)
}
