// Package terminaltest provides in-memory terminals and sinks for tests.
package terminaltest

import (
	"fmt"

	"github.com/lixenwraith/simple-chat/terminal"
)

// OpKind identifies a recorded sink operation
type OpKind uint8

const (
	OpMove OpKind = iota
	OpFg
	OpBg
	OpPrint
	OpClear
	OpFlush
)

// Op is one recorded sink call
type Op struct {
	Kind  OpKind
	X, Y  int
	Color terminal.RGB
	Rune  rune
}

func (o Op) String() string {
	switch o.Kind {
	case OpMove:
		return fmt.Sprintf("move(%d,%d)", o.X, o.Y)
	case OpFg:
		return fmt.Sprintf("fg(%v)", o.Color)
	case OpBg:
		return fmt.Sprintf("bg(%v)", o.Color)
	case OpPrint:
		return fmt.Sprintf("print(%q)", o.Rune)
	case OpClear:
		return "clear"
	default:
		return "flush"
	}
}

// Recorder is a Sink that records operations and mirrors them onto a screen model
type Recorder struct {
	Ops    []Op
	Screen *terminal.Grid
	Err    error // returned from Flush when set

	x, y   int
	fg, bg terminal.RGB
}

// NewRecorder creates a recorder with a w x h screen model
func NewRecorder(w, h int) *Recorder {
	return &Recorder{Screen: terminal.NewGrid(w, h), fg: terminal.White, bg: terminal.Black}
}

func (r *Recorder) MoveTo(x, y int) {
	r.Ops = append(r.Ops, Op{Kind: OpMove, X: x, Y: y})
	r.x, r.y = x, y
}

func (r *Recorder) SetForeground(c terminal.RGB) {
	r.Ops = append(r.Ops, Op{Kind: OpFg, Color: c})
	r.fg = c
}

func (r *Recorder) SetBackground(c terminal.RGB) {
	r.Ops = append(r.Ops, Op{Kind: OpBg, Color: c})
	r.bg = c
}

func (r *Recorder) Print(ch rune) {
	r.Ops = append(r.Ops, Op{Kind: OpPrint, X: r.x, Y: r.y, Rune: ch})
	r.Screen.PutCell(ch, r.x, r.y, r.fg, r.bg)
	r.x++
}

func (r *Recorder) ClearScreen() {
	r.Ops = append(r.Ops, Op{Kind: OpClear})
	r.Screen.Clear()
	r.x, r.y = 0, 0
}

func (r *Recorder) Flush() error {
	r.Ops = append(r.Ops, Op{Kind: OpFlush})
	return r.Err
}

// Reset forgets recorded operations, keeping the screen model
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Count returns how many operations of kind were recorded
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Cursor returns the model cursor position
func (r *Recorder) Cursor() (int, int) {
	return r.x, r.y
}

// Row returns the runes of screen row y as a string
func (r *Recorder) Row(y int) string {
	runes := make([]rune, r.Screen.Width())
	for x := range runes {
		runes[x] = r.Screen.At(x, y).Rune
	}
	return string(runes)
}

// Terminal is a scripted in-memory terminal
type Terminal struct {
	W, H     int
	Events   []terminal.Event
	Recorder *Recorder
	Inited   bool
	Finished bool
}

// NewTerminal creates a w x h fake terminal
func NewTerminal(w, h int) *Terminal {
	return &Terminal{W: w, H: h, Recorder: NewRecorder(w, h)}
}

// Push queues events for PollEvent
func (t *Terminal) Push(evs ...terminal.Event) {
	t.Events = append(t.Events, evs...)
}

// Type queues one key event per rune of s
func (t *Terminal) Type(s string) {
	for _, r := range s {
		t.Push(terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: r})
	}
}

// Key queues a special key event
func (t *Terminal) Key(k terminal.Key) {
	t.Push(terminal.Event{Type: terminal.EventKey, Key: k})
}

// Resize changes the size and queues a resize event
func (t *Terminal) Resize(w, h int) {
	t.W, t.H = w, h
	t.Recorder.Screen = terminal.NewGrid(w, h)
	t.Push(terminal.Event{Type: terminal.EventResize, Width: w, Height: h})
}

func (t *Terminal) Init() error { t.Inited = true; return nil }
func (t *Terminal) Fini()       { t.Finished = true }

func (t *Terminal) Size() (int, int) { return t.W, t.H }

func (t *Terminal) PollEvent() (terminal.Event, bool) {
	if len(t.Events) == 0 {
		return terminal.Event{}, false
	}
	ev := t.Events[0]
	t.Events = t.Events[1:]
	return ev, true
}

func (t *Terminal) Sink() terminal.Sink { return t.Recorder }
