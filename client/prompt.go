package client

import "github.com/lixenwraith/simple-chat/terminal"

// Prompt is the editable input line: a rune buffer with an insertion cursor
// Invariant: 0 <= cursor <= len(data)
type Prompt struct {
	data   []rune
	cursor int
}

// NewPrompt creates an empty prompt
func NewPrompt() *Prompt {
	return &Prompt{}
}

// String returns the current line
func (p *Prompt) String() string {
	return string(p.data)
}

// Runes returns the underlying buffer (read-only)
func (p *Prompt) Runes() []rune {
	return p.data
}

// Len returns the number of runes
func (p *Prompt) Len() int {
	return len(p.data)
}

// Cursor returns the insertion index
func (p *Prompt) Cursor() int {
	return p.cursor
}

// --- Editing ---

// Insert adds r at the cursor and advances past it
func (p *Prompt) Insert(r rune) {
	p.data = append(p.data, 0)
	copy(p.data[p.cursor+1:], p.data[p.cursor:])
	p.data[p.cursor] = r
	p.cursor++
}

// Backspace removes the rune before the cursor, no-op at column 0
func (p *Prompt) Backspace() {
	if p.cursor == 0 {
		return
	}
	p.data = append(p.data[:p.cursor-1], p.data[p.cursor:]...)
	p.cursor--
}

// Delete removes the rune under the cursor, no-op at end of line
func (p *Prompt) Delete() {
	if p.cursor >= len(p.data) {
		return
	}
	p.data = append(p.data[:p.cursor], p.data[p.cursor+1:]...)
}

// Clear empties the line
func (p *Prompt) Clear() {
	p.data = p.data[:0]
	p.cursor = 0
}

// --- Cursor movement ---

// Left moves the cursor one rune left, clamped at 0
func (p *Prompt) Left() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Right moves the cursor one rune right, clamped at len
func (p *Prompt) Right() {
	if p.cursor < len(p.data) {
		p.cursor++
	}
}

// Home moves the cursor to the start of the line
func (p *Prompt) Home() {
	p.cursor = 0
}

// End moves the cursor past the last rune
func (p *Prompt) End() {
	p.cursor = len(p.data)
}

// --- Rendering ---

// Render writes the line at (x, y) and blanks the columns after it up to w
func (p *Prompt) Render(g *terminal.Grid, x, y, w int) {
	g.PutRun(p.data, x, y, terminal.White, terminal.Black)
	for px := x + len(p.data); px < w; px++ {
		g.PutCell(' ', px, y, terminal.White, terminal.Black)
	}
}

// SyncCursor places the terminal cursor on the logical cursor
// Cursor position is not part of the grid, so this runs every frame
func (p *Prompt) SyncCursor(s terminal.Sink, x, y, w int) {
	s.MoveTo(min(x+p.cursor, w), y)
}
