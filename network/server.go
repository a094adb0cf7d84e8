package network

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/simple-chat/logging"
)

// PeerID uniquely identifies a connected peer
type PeerID = uuid.UUID

type eventKind uint8

const (
	eventConnected eventKind = iota
	eventDisconnected
	eventMessage
)

// event is one registry mutation; all of them flow through a single channel
type event struct {
	kind    eventKind
	peer    *peer
	id      PeerID
	payload []byte
}

// peer is a connection owned by the registry
type peer struct {
	id   PeerID
	addr string
	conn net.Conn

	closeOnce sync.Once
}

func (p *peer) close() {
	p.closeOnce.Do(func() {
		p.conn.Close()
	})
}

// write sends p with a deadline so one stalled peer cannot hold up the registry
func (p *peer) write(b []byte, timeout time.Duration) error {
	if timeout > 0 {
		p.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	_, err := p.conn.Write(b)
	return err
}

// Server relays every chunk a peer sends to all other peers
type Server struct {
	config   *Config
	listener net.Listener
	events   chan event

	// Owned by the registry goroutine
	peers map[PeerID]*peer

	peerCount atomic.Int32
}

// NewServer creates an unbound server
func NewServer(cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	size := cfg.EventQueueSize
	if size <= 0 {
		size = 256
	}
	return &Server{
		config: cfg,
		events: make(chan event, size),
		peers:  make(map[PeerID]*peer),
	}
}

// Listen binds the configured address
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.config.Listen)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// PeerCount returns the number of registered peers
func (s *Server) PeerCount() int {
	return int(s.peerCount.Load())
}

// ListenAndServe binds and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the accept loop and the registry until ctx is cancelled
func (s *Server) Serve(parent context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	logging.Info("server", "listening on %s", s.listener.Addr())

	g, ctx := errgroup.WithContext(parent)

	g.Go(func() error {
		<-ctx.Done()
		s.listener.Close()
		return nil
	})
	g.Go(func() error {
		return s.acceptLoop(ctx, g)
	})
	g.Go(func() error {
		s.registry(ctx)
		return nil
	})

	err := g.Wait()
	if parent.Err() != nil {
		return nil
	}
	return err
}

// acceptLoop hands new connections to the registry and starts their readers
func (s *Server) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return errors.Wrap(err, "accept")
		}

		if limit := s.config.MaxPeers; limit > 0 && s.PeerCount() >= limit {
			logging.Warn("server", "rejecting %s: max peers reached", conn.RemoteAddr())
			conn.Close()
			continue
		}

		p := &peer{id: uuid.New(), addr: conn.RemoteAddr().String(), conn: conn}
		if !s.emit(ctx, event{kind: eventConnected, peer: p, id: p.id}) {
			conn.Close()
			return nil
		}
		g.Go(func() error {
			s.readLoop(ctx, p)
			return nil
		})
	}
}

// readLoop forwards raw chunks until the connection fails
func (s *Server) readLoop(ctx context.Context, p *peer) {
	stop := context.AfterFunc(ctx, p.close)
	defer stop()

	buf := make([]byte, max(s.config.ReadBufferSize, 1))
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			payload := make([]byte, n)
			copy(payload, buf[:n])
			if !s.emit(ctx, event{kind: eventMessage, id: p.id, payload: payload}) {
				return
			}
		}
		if err != nil {
			s.emit(ctx, event{kind: eventDisconnected, id: p.id})
			return
		}
	}
}

func (s *Server) emit(ctx context.Context, ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// registry is the single consumer of events and the only owner of the peer map
func (s *Server) registry(ctx context.Context) {
	defer func() {
		for id, p := range s.peers {
			p.close()
			delete(s.peers, id)
		}
		s.peerCount.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Server) handle(ev event) {
	switch ev.kind {
	case eventConnected:
		p := ev.peer
		// Greet before registering so a failed greeting never enters the map
		if s.config.Welcome != "" {
			if err := p.write([]byte(s.config.Welcome), s.config.WriteTimeout); err != nil {
				logging.Error("server", err, "greet %s", p.addr)
				p.close()
				return
			}
		}
		s.peers[p.id] = p
		s.peerCount.Store(int32(len(s.peers)))
		logging.Info("server", "peer %s connected from %s", p.id, p.addr)

	case eventDisconnected:
		s.drop(ev.id)

	case eventMessage:
		author, ok := s.peers[ev.id]
		if !ok {
			return
		}
		logging.Debug("server", "%d bytes from %s", len(ev.payload), author.addr)
		for id, p := range s.peers {
			if id == ev.id {
				continue
			}
			if err := p.write(ev.payload, s.config.WriteTimeout); err != nil {
				logging.Error("server", err, "relay to %s", p.addr)
				s.drop(id)
			}
		}
	}
}

// drop closes and forgets a peer; unknown ids are ignored
func (s *Server) drop(id PeerID) {
	p, ok := s.peers[id]
	if !ok {
		return
	}
	p.close()
	delete(s.peers, id)
	s.peerCount.Store(int32(len(s.peers)))
	logging.Info("server", "peer %s disconnected", id)
}
