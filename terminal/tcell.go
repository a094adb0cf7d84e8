package terminal

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// tcellTerminal implements Terminal on top of a tcell.Screen
// tcell owns raw mode and the alternate screen; patches still drive its cell updates
type tcellTerminal struct {
	screen tcell.Screen
	sink   *tcellSink
	events chan tcell.Event
	quitCh chan struct{}

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// NewTcell creates a tcell-backed terminal
func NewTcell() Terminal {
	return &tcellTerminal{
		events: make(chan tcell.Event, 256),
		quitCh: make(chan struct{}),
	}
}

// newTcellWithScreen wraps an existing screen, used with tcell's simulation screen
func newTcellWithScreen(s tcell.Screen) *tcellTerminal {
	t := NewTcell().(*tcellTerminal)
	t.screen = s
	return t
}

func (t *tcellTerminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return errors.Wrap(err, "create tcell screen")
		}
		t.screen = s
	}
	if err := t.screen.Init(); err != nil {
		return errors.Wrap(err, "init tcell screen")
	}
	t.screen.SetStyle(tcell.StyleDefault.Foreground(toTcell(White)).Background(toTcell(Black)))
	t.sink = &tcellSink{screen: t.screen, style: tcell.StyleDefault}

	go t.pollLoop()

	t.initialized = true
	return nil
}

// pollLoop forwards tcell events until the screen is finalized
func (t *tcellTerminal) pollLoop() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.quitCh:
			return
		}
	}
}

func (t *tcellTerminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}
	close(t.quitCh)
	t.screen.Fini()
	t.finalized = true
}

func (t *tcellTerminal) Size() (int, int) {
	return t.screen.Size()
}

func (t *tcellTerminal) PollEvent() (Event, bool) {
	for {
		select {
		case tev := <-t.events:
			if ev, ok := translateTcellEvent(tev); ok {
				return ev, true
			}
		default:
			return Event{}, false
		}
	}
}

func (t *tcellTerminal) Sink() Sink {
	return t.sink
}

// tcellKeys maps tcell special keys; tcell aliases (KeyCR, KeyBS, ...) share values
var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyCtrlH:      KeyCtrlH,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyCtrlA:      KeyCtrlA,
	tcell.KeyCtrlC:      KeyCtrlC,
	tcell.KeyCtrlD:      KeyCtrlD,
	tcell.KeyCtrlE:      KeyCtrlE,
	tcell.KeyCtrlL:      KeyCtrlL,
	tcell.KeyCtrlU:      KeyCtrlU,
	tcell.KeyCtrlW:      KeyCtrlW,
}

// translateTcellEvent converts tcell events into the package's Event
func translateTcellEvent(tev tcell.Event) (Event, bool) {
	switch e := tev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true
	case *tcell.EventKey:
		var mod Modifier
		if e.Modifiers()&tcell.ModShift != 0 {
			mod |= ModShift
		}
		if e.Modifiers()&tcell.ModAlt != 0 {
			mod |= ModAlt
		}
		if e.Key() == tcell.KeyRune {
			return Event{Type: EventKey, Key: KeyRune, Rune: e.Rune(), Modifiers: mod}, true
		}
		if k, ok := tcellKeys[e.Key()]; ok {
			return Event{Type: EventKey, Key: k, Modifiers: mod}, true
		}
	}
	return Event{}, false
}

// tcellSink replays the operation stream as tcell cell writes
type tcellSink struct {
	screen tcell.Screen
	x, y   int
	style  tcell.Style
}

func toTcell(c RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (s *tcellSink) MoveTo(x, y int) {
	s.x, s.y = x, y
	s.screen.ShowCursor(x, y)
}

func (s *tcellSink) SetForeground(c RGB) {
	s.style = s.style.Foreground(toTcell(c))
}

func (s *tcellSink) SetBackground(c RGB) {
	s.style = s.style.Background(toTcell(c))
}

func (s *tcellSink) Print(r rune) {
	s.screen.SetContent(s.x, s.y, r, nil, s.style)
	s.x++
}

func (s *tcellSink) ClearScreen() {
	s.screen.Clear()
	s.x, s.y = 0, 0
}

func (s *tcellSink) Flush() error {
	s.screen.Show()
	return nil
}
