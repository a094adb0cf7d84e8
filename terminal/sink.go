package terminal

import (
	"bufio"
	"io"
)

// Sink receives the render operation stream for one frame
// Operations are queued; nothing is guaranteed visible until Flush
type Sink interface {
	// MoveTo positions the cursor (0-indexed)
	MoveTo(x, y int)
	SetForeground(c RGB)
	SetBackground(c RGB)
	// Print writes a glyph at the cursor and advances it one column
	Print(r rune)
	// ClearScreen erases the whole screen and homes the cursor
	ClearScreen()
	// Flush pushes queued operations to the device
	Flush() error
}

// ansiSink encodes operations as ANSI escape sequences
type ansiSink struct {
	w         *bufio.Writer
	colorMode ColorMode
}

// NewANSISink creates a sink writing escape sequences to w
func NewANSISink(w io.Writer, colorMode ColorMode) Sink {
	return &ansiSink{
		w:         bufio.NewWriterSize(w, 65536),
		colorMode: colorMode,
	}
}

func (s *ansiSink) MoveTo(x, y int) {
	writeCursorPos(s.w, max(x, 0), max(y, 0))
}

func (s *ansiSink) SetForeground(c RGB) {
	if s.colorMode == ColorModeTrueColor {
		s.w.Write(csiFgRGB)
		writeRGB(s.w, c)
	} else {
		s.w.Write(csiFg256)
		writeInt(s.w, int(RGBTo256(c)))
	}
	s.w.WriteByte('m')
}

func (s *ansiSink) SetBackground(c RGB) {
	if s.colorMode == ColorModeTrueColor {
		s.w.Write(csiBgRGB)
		writeRGB(s.w, c)
	} else {
		s.w.Write(csiBg256)
		writeInt(s.w, int(RGBTo256(c)))
	}
	s.w.WriteByte('m')
}

func (s *ansiSink) Print(r rune) {
	if r == 0 {
		r = ' '
	}
	if r < 0x80 {
		s.w.WriteByte(byte(r))
	} else {
		s.w.WriteRune(r)
	}
}

func (s *ansiSink) ClearScreen() {
	s.w.Write(csiClear)
}

// Flush returns the first write error seen since the last flush (bufio errors are sticky)
func (s *ansiSink) Flush() error {
	return s.w.Flush()
}
