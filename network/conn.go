package network

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ErrClosed reports that the remote end closed the connection
var ErrClosed = errors.New("connection closed by peer")

// Conn is a raw, unframed TCP byte pipe
// Receives never park the caller longer than the configured poll timeout
type Conn struct {
	conn   net.Conn
	addr   string
	config *Config
	buf    []byte
}

// Dial connects to addr within the configured connect timeout
func Dial(ctx context.Context, addr string, cfg *Config) (*Conn, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return newConn(c, addr, cfg), nil
}

func newConn(c net.Conn, addr string, cfg *Config) *Conn {
	size := cfg.ReadBufferSize
	if size <= 0 {
		size = 4096
	}
	return &Conn{conn: c, addr: addr, config: cfg, buf: make([]byte, size)}
}

// Send writes p in full or fails
func (c *Conn) Send(p []byte) error {
	if c.config.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	_, err := c.conn.Write(p)
	return errors.Wrap(err, "send")
}

// TryReceive returns one chunk if data is pending
// (nil, nil) means nothing arrived within the poll timeout; ErrClosed means EOF
func (c *Conn) TryReceive() ([]byte, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.config.PollTimeout))
	n, err := c.conn.Read(c.buf)
	if n > 0 {
		// A trailing error resurfaces on the next call
		out := make([]byte, n)
		copy(out, c.buf[:n])
		return out, nil
	}

	switch {
	case err == nil, errors.Is(err, os.ErrDeadlineExceeded):
		return nil, nil
	case errors.Is(err, io.EOF):
		return nil, ErrClosed
	default:
		return nil, errors.Wrap(err, "receive")
	}
}

// RemoteAddr returns the address as dialed
func (c *Conn) RemoteAddr() string {
	return c.addr
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
