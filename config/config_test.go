package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "simple-chat", cfg.Title)
	assert.Equal(t, 16*time.Millisecond, cfg.Tick.Duration)
	assert.Equal(t, 6969, cfg.Network.Port)
	assert.Equal(t, "0.0.0.0:6969", cfg.Network.Listen)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
title = "lobby"
tick = "33ms"
backend = "tcell"
sound = true

[network]
port = 7000
connect_timeout = "2s"
max_peers = 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lobby", cfg.Title)
	assert.Equal(t, 33*time.Millisecond, cfg.Tick.Duration)
	assert.Equal(t, "tcell", cfg.Backend)
	assert.True(t, cfg.Sound)
	assert.Equal(t, 7000, cfg.Network.Port)
	assert.Equal(t, 2*time.Second, cfg.Network.ConnectTimeout.Duration)
	assert.Equal(t, 3, cfg.Network.MaxPeers)

	// Untouched keys keep defaults
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, time.Millisecond, cfg.Network.PollTimeout.Duration)
	assert.Equal(t, 4096, cfg.Network.ReadBufferSize)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `title = `},
		{"duration", `tick = "soon"`},
		{"unknown key", `colour = "256"`},
		{"backend", `backend = "curses"`},
		{"color", `color = "16"`},
		{"port", "[network]\nport = 70000"},
		{"tick", `tick = "0s"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNetworkConfig(t *testing.T) {
	cfg := Default()
	cfg.Network.Port = 7001
	cfg.Network.WriteTimeout = Duration{time.Second}

	n := cfg.NetworkConfig()
	assert.Equal(t, 7001, n.Port)
	assert.Equal(t, time.Second, n.WriteTimeout)
	assert.Equal(t, cfg.Network.Listen, n.Listen)
	assert.Equal(t, cfg.Network.ReadBufferSize, n.ReadBufferSize)
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(out))
}
