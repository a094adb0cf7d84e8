package network

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := testConfig()
	cfg.Listen = "127.0.0.1:0"
	if mutate != nil {
		mutate(cfg)
	}

	s := NewServer(cfg)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return s
}

// join connects and consumes the greeting, which the registry writes only after accepting the peer
func join(t *testing.T, s *Server) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	welcome := make([]byte, len(s.config.Welcome))
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = io.ReadFull(c, welcome)
	require.NoError(t, err)
	assert.Equal(t, s.config.Welcome, string(welcome))
	return c
}

func TestServerRelaysToOthersOnly(t *testing.T) {
	s := startServer(t, nil)

	alice := join(t, s)
	bob := join(t, s)
	carol := join(t, s)

	_, err := alice.Write([]byte("hello"))
	require.NoError(t, err)

	for _, c := range []net.Conn{bob, carol} {
		buf := make([]byte, 5)
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, err := io.ReadFull(c, buf)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(buf))
	}

	alice.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, err = alice.Read(make([]byte, 1))
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout(), "sender must not receive its own message")
}

func TestServerForgetsDisconnectedPeer(t *testing.T) {
	s := startServer(t, nil)

	alice := join(t, s)
	bob := join(t, s)
	require.Eventually(t, func() bool { return s.PeerCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	bob.Close()
	require.Eventually(t, func() bool { return s.PeerCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := alice.Write([]byte("anyone?"))
	require.NoError(t, err)
}

func TestServerRejectsBeyondMaxPeers(t *testing.T) {
	s := startServer(t, func(cfg *Config) { cfg.MaxPeers = 1 })

	join(t, s)
	require.Eventually(t, func() bool { return s.PeerCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	extra, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer extra.Close()

	extra.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = extra.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.Equal(t, 1, s.PeerCount())
}

func TestServeWithoutListen(t *testing.T) {
	s := NewServer(nil)
	assert.Nil(t, s.Addr())
	assert.Error(t, s.Serve(context.Background()))
}
