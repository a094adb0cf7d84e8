// Package config loads the TOML settings file shared by the client and the server.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lixenwraith/simple-chat/network"
	"github.com/lixenwraith/simple-chat/terminal"
)

// Duration decodes TOML strings such as "16ms" or "5s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Network mirrors network.Config in file form
type Network struct {
	Port           int      `toml:"port"`
	Listen         string   `toml:"listen"`
	Welcome        string   `toml:"welcome"`
	ConnectTimeout Duration `toml:"connect_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	PollTimeout    Duration `toml:"poll_timeout"`
	ReadBufferSize int      `toml:"read_buffer_size"`
	MaxPeers       int      `toml:"max_peers"`
}

// Config is the full settings file
type Config struct {
	Title   string   `toml:"title"`
	Tick    Duration `toml:"tick"`
	Color   string   `toml:"color"`
	Backend string   `toml:"backend"`
	Sound   bool     `toml:"sound"`
	Network Network  `toml:"network"`
}

// Default returns the built-in settings
func Default() *Config {
	n := network.DefaultConfig()
	return &Config{
		Title:   "simple-chat",
		Tick:    Duration{16 * time.Millisecond},
		Color:   "auto",
		Backend: terminal.BackendANSI,
		Network: Network{
			Port:           n.Port,
			Listen:         n.Listen,
			Welcome:        n.Welcome,
			ConnectTimeout: Duration{n.ConnectTimeout},
			WriteTimeout:   Duration{n.WriteTimeout},
			PollTimeout:    Duration{n.PollTimeout},
			ReadBufferSize: n.ReadBufferSize,
			MaxPeers:       n.MaxPeers,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/simple-chat/config.toml or its platform equivalent
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "simple-chat", "config.toml")
}

// Load reads path over the defaults
// A missing file is not an error; keys absent from the file keep their defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validate %s", path)
	}
	return cfg, nil
}

// Validate rejects values the client or server cannot run with
func (c *Config) Validate() error {
	if c.Tick.Duration <= 0 {
		return errors.Errorf("tick must be positive, got %s", c.Tick)
	}
	switch c.Color {
	case "auto", "256", "truecolor":
	default:
		return errors.Errorf("unknown color mode %q", c.Color)
	}
	switch c.Backend {
	case terminal.BackendANSI, terminal.BackendTcell:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		return errors.Errorf("port out of range: %d", c.Network.Port)
	}
	if c.Network.ReadBufferSize <= 0 {
		return errors.Errorf("read_buffer_size must be positive, got %d", c.Network.ReadBufferSize)
	}
	if c.Network.PollTimeout.Duration <= 0 {
		return errors.Errorf("poll_timeout must be positive, got %s", c.Network.PollTimeout)
	}
	return nil
}

// NetworkConfig converts the file section into the runtime form
func (c *Config) NetworkConfig() *network.Config {
	n := network.DefaultConfig()
	n.Port = c.Network.Port
	n.Listen = c.Network.Listen
	n.Welcome = c.Network.Welcome
	n.ConnectTimeout = c.Network.ConnectTimeout.Duration
	n.WriteTimeout = c.Network.WriteTimeout.Duration
	n.PollTimeout = c.Network.PollTimeout.Duration
	n.ReadBufferSize = c.Network.ReadBufferSize
	n.MaxPeers = c.Network.MaxPeers
	return n
}
