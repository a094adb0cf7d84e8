package terminal

// styleState tracks the last emitted colors so unchanged style is not re-sent
type styleState struct {
	fg RGB
	bg RGB
}

// begin resets the running style to the default and asserts it on the sink
func (st *styleState) begin(s Sink) {
	st.fg = DefaultCell.Fg
	st.bg = DefaultCell.Bg
	s.SetForeground(st.fg)
	s.SetBackground(st.bg)
}

// set emits only the color components that changed
func (st *styleState) set(s Sink, fg, bg RGB) {
	if fg != st.fg {
		st.fg = fg
		s.SetForeground(fg)
	}
	if bg != st.bg {
		st.bg = bg
		s.SetBackground(bg)
	}
}

// Flush performs a full unconditional redraw of g
// Used when no previous frame exists (startup, resize)
// Each row starts with an explicit cursor move since auto-wrap is disabled
func Flush(s Sink, g *Grid) error {
	var st styleState
	s.ClearScreen()
	st.begin(s)
	s.MoveTo(0, 0)

	for y := 0; y < g.height; y++ {
		if y > 0 {
			s.MoveTo(0, y)
		}
		row := g.cells[y*g.width : (y+1)*g.width]
		for _, c := range row {
			st.set(s, c.Fg, c.Bg)
			s.Print(c.Rune)
		}
	}
	return s.Flush()
}

// ApplyPatches emits patches in order, skipping the cursor move when a patch
// directly follows the previous one on the same row
// The caller flushes the sink once the frame is complete
func ApplyPatches(s Sink, patches []Patch) {
	if len(patches) == 0 {
		return
	}

	var st styleState
	st.begin(s)

	prevX, prevY := -2, -1
	for _, p := range patches {
		if !(p.Y == prevY && p.X == prevX+1) {
			s.MoveTo(p.X, p.Y)
		}
		prevX, prevY = p.X, p.Y

		st.set(s, p.Cell.Fg, p.Cell.Bg)
		s.Print(p.Cell.Rune)
	}
}
