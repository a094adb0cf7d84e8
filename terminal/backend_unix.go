//go:build unix

package terminal

import (
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// escapeWindow is how long a lone ESC byte may wait for the rest of its sequence
// before the reader reports it as the Escape key
const escapeWindow = 50 * time.Millisecond

// readChunk bounds one stdin read; longer pastes arrive over several reads
const readChunk = 1024

// Fallback when the output is not a terminal
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// unixBackend reads raw stdin and writes escape sequences to stdout
type unixBackend struct {
	in, out *os.File
	fd      int
	saved   *term.State
	buf     []byte

	winchStop chan struct{}
	winchDone chan struct{}
}

func newBackend() Backend {
	return newUnixBackend(os.Stdin, os.Stdout)
}

func newUnixBackend(in, out *os.File) *unixBackend {
	return &unixBackend{
		in:  in,
		out: out,
		fd:  int(in.Fd()),
		buf: make([]byte, readChunk),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.fd) {
		return errors.Errorf("%s is not a terminal", b.in.Name())
	}
	saved, err := term.MakeRaw(b.fd)
	if err != nil {
		return errors.Wrapf(err, "raw mode on %s", b.in.Name())
	}
	b.saved = saved
	return nil
}

func (b *unixBackend) Fini() {
	b.stopWinch()
	if b.saved != nil {
		term.Restore(b.fd, b.saved)
		b.saved = nil
	}
}

func (b *unixBackend) Size() (int, int) {
	w, h, err := term.GetSize(int(b.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return w, h
}

func (b *unixBackend) Write(p []byte) (int, error) {
	return b.out.Write(p)
}

// Read waits at most escapeWindow for input so stopCh and a pending lone ESC are both observed.
// The returned slice is reused by the next call
func (b *unixBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		ready, err := waitReadable(b.fd, escapeWindow)
		if err != nil {
			return nil, errors.Wrap(err, "poll input")
		}
		if !ready {
			return nil, nil
		}

		n, err := unix.Read(b.fd, b.buf)
		switch {
		case err == unix.EINTR || err == unix.EAGAIN:
			continue
		case err != nil:
			return nil, errors.Wrap(err, "read input")
		case n == 0:
			return nil, io.EOF
		}
		return b.buf[:n], nil
	}
}

// SetResizeHandler reports SIGWINCH only when the size actually changed.
// Every report costs the client a full repaint, and a window drag fires many signals
func (b *unixBackend) SetResizeHandler(handler func(width, height int)) {
	b.stopWinch()
	b.winchStop = make(chan struct{})
	b.winchDone = make(chan struct{})

	last := newSizeTracker(b.Size())
	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, unix.SIGWINCH)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-stop:
				return
			case <-sigCh:
				if w, h := b.Size(); last.update(w, h) {
					handler(w, h)
				}
			}
		}
	}(b.winchStop, b.winchDone)
}

func (b *unixBackend) stopWinch() {
	if b.winchStop == nil {
		return
	}
	close(b.winchStop)
	<-b.winchDone
	b.winchStop, b.winchDone = nil, nil
}

// waitReadable polls fd for input, retrying on EINTR
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(timeout/time.Millisecond))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// sizeTracker remembers the last reported terminal size
type sizeTracker struct {
	w, h int
}

func newSizeTracker(w, h int) *sizeTracker {
	return &sizeTracker{w: w, h: h}
}

// update records w x h and reports whether it differs from the previous size
func (s *sizeTracker) update(w, h int) bool {
	if w == s.w && h == s.h {
		return false
	}
	s.w, s.h = w, h
	return true
}
