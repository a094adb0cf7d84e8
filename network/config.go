package network

import "time"

// DefaultPort is used when an address names only a host
const DefaultPort = 6969

// Config holds network configuration shared by the client connection and the server
type Config struct {
	// Port appended to host-only dial addresses
	Port int

	// Address the server binds
	Listen string

	// Greeting written to every peer on connect
	Welcome string

	// Connection limits
	MaxPeers int

	// Timing
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	PollTimeout    time.Duration // read deadline for a non-blocking receive

	// Buffer sizes
	ReadBufferSize int
	EventQueueSize int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		Port:           DefaultPort,
		Listen:         "0.0.0.0:6969",
		Welcome:        "You are connected to simple-chat server",
		MaxPeers:       64,
		ConnectTimeout: 5 * time.Second,
		WriteTimeout:   5 * time.Second,
		PollTimeout:    time.Millisecond,
		ReadBufferSize: 4096,
		EventQueueSize: 256,
	}
}
