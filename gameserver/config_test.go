package gameserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server name", func(c *Config) { c.ServerName = "" }},
		{"broadcast port zero", func(c *Config) { c.BroadcastPort = 0 }},
		{"broadcast port too high", func(c *Config) { c.BroadcastPort = 70000 }},
		{"non-positive broadcast interval", func(c *Config) { c.BroadcastInterval = 0 }},
		{"non-positive join window", func(c *Config) { c.JoinWindow = -time.Second }},
		{"non-positive answer deadline", func(c *Config) { c.AnswerDeadline = 0 }},
		{"negative max rounds", func(c *Config) { c.MaxRounds = -1 }},
		{"zero registration workers", func(c *Config) { c.RegistrationWorkers = 0 }},
		{"zero bind attempts", func(c *Config) { c.BindAttempts = 0 }},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			cfg := DefaultConfig()
			m.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
