package terminal

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Terminal is a screen the frame loop renders into and polls input from
type Terminal interface {
	// Init enters raw mode and the alternate screen buffer
	Init() error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// PollEvent returns the next pending event without blocking
	PollEvent() (Event, bool)

	// Sink returns the operation stream for rendering
	Sink() Sink
}

// Backend names accepted by Open
const (
	BackendANSI  = "ansi"
	BackendTcell = "tcell"
)

// Open creates an uninitialized terminal for the named backend
func Open(backend string, colorMode ColorMode) (Terminal, error) {
	switch backend {
	case "", BackendANSI:
		return New(colorMode), nil
	case BackendTcell:
		return NewTcell(), nil
	default:
		return nil, errors.Errorf("unknown terminal backend %q", backend)
	}
}

// ansiTerminal implements Terminal with direct escape sequences over a Backend
type ansiTerminal struct {
	backend   Backend
	colorMode ColorMode
	sink      Sink
	input     *inputReader
	resizeCh  chan Event

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates an ANSI terminal on the platform backend
func New(colorMode ColorMode) Terminal {
	return newANSITerminal(newBackend(), colorMode)
}

func newANSITerminal(b Backend, colorMode ColorMode) *ansiTerminal {
	return &ansiTerminal{
		backend:   b,
		colorMode: colorMode,
		sink:      NewANSISink(b, colorMode),
		resizeCh:  make(chan Event, 1),
	}
}

// Init enters raw mode and sets up terminal
func (t *ansiTerminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	t.input = newInputReader(t.backend)

	t.backend.SetResizeHandler(func(w, h int) {
		ev := Event{Type: EventResize, Width: w, Height: h}
		// Keep only the latest size pending
		select {
		case t.resizeCh <- ev:
		default:
			select {
			case <-t.resizeCh:
			default:
			}
			select {
			case t.resizeCh <- ev:
			default:
			}
		}
	})

	t.writeRaw(csiAltScreenEnter)
	// Prevents terminal scroll/wrap on bottom-right corner write
	t.writeRaw(csiAutoWrapOff)
	t.writeRaw(csiCursorShow)

	t.input.start()

	t.initialized = true
	return nil
}

// Fini restores terminal state
func (t *ansiTerminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	if t.input != nil {
		t.input.stop()
	}

	t.writeRaw(csiSGR0)
	t.writeRaw(csiCursorShow)
	t.writeRaw(csiAltScreenExit)
	// Re-enable after leaving alt screen so the main buffer keeps wrapping
	t.writeRaw(csiAutoWrapOn)

	t.backend.Fini()

	t.finalized = true
}

// Size returns current terminal dimensions
func (t *ansiTerminal) Size() (int, int) {
	return t.backend.Size()
}

// PollEvent returns a pending resize first, then a pending key, never blocking
func (t *ansiTerminal) PollEvent() (Event, bool) {
	select {
	case ev := <-t.resizeCh:
		return ev, true
	default:
	}

	if t.input == nil {
		return Event{}, false
	}

	select {
	case ev := <-t.input.events():
		return ev, true
	default:
		return Event{}, false
	}
}

// Sink returns the escape sequence encoder bound to the backend
func (t *ansiTerminal) Sink() Sink {
	return t.sink
}

// writeRaw writes raw bytes to output, bypassing the sink buffer
func (t *ansiTerminal) writeRaw(data []byte) {
	t.backend.Write(data)
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
