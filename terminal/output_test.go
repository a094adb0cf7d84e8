package terminal_test

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/simple-chat/terminal"
	"github.com/lixenwraith/simple-chat/terminal/terminaltest"
)

func TestApplyPatches_AdjacentSkipsMove(t *testing.T) {
	cur := terminal.NewGrid(10, 3)
	cur.PutString("hi", 3, 1, terminal.White, terminal.Black)
	cur.PutString("yo", 0, 2, terminal.White, terminal.Black)

	rec := terminaltest.NewRecorder(10, 3)
	terminal.ApplyPatches(rec, cur.Diff(terminal.NewGrid(10, 3)))

	var moves []terminaltest.Op
	for _, op := range rec.Ops {
		if op.Kind == terminaltest.OpMove {
			moves = append(moves, op)
		}
	}
	require.Len(t, moves, 2)
	assert.Equal(t, [2]int{3, 1}, [2]int{moves[0].X, moves[0].Y})
	assert.Equal(t, [2]int{0, 2}, [2]int{moves[1].X, moves[1].Y})
	assert.Equal(t, 4, rec.Count(terminaltest.OpPrint))
}

func TestApplyPatches_NoMoveBetweenAdjacentPatches(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 30; iter++ {
		a := terminal.NewGrid(16, 6)
		for i := 0; i < 40; i++ {
			a.PutCell('#', rng.Intn(16), rng.Intn(6), terminal.Red, terminal.Black)
		}
		patches := a.Diff(terminal.NewGrid(16, 6))

		rec := terminaltest.NewRecorder(16, 6)
		terminal.ApplyPatches(rec, patches)

		// Walk prints; a move between two prints is only allowed on a discontinuity
		var last *terminaltest.Op
		moved := false
		for i := range rec.Ops {
			op := rec.Ops[i]
			switch op.Kind {
			case terminaltest.OpMove:
				moved = true
			case terminaltest.OpPrint:
				if last != nil && last.Y == op.Y && op.X == last.X+1 {
					assert.False(t, moved, "move emitted between adjacent cells at (%d,%d)", op.X, op.Y)
				}
				last = &rec.Ops[i]
				moved = false
			}
		}
	}
}

func TestApplyPatches_FirstPatchAlwaysPositioned(t *testing.T) {
	cur := terminal.NewGrid(5, 1)
	cur.PutCell('x', 1, 0, terminal.White, terminal.Black)

	rec := terminaltest.NewRecorder(5, 1)
	terminal.ApplyPatches(rec, cur.Diff(terminal.NewGrid(5, 1)))

	assert.Equal(t, 1, rec.Count(terminaltest.OpMove))
	assert.Equal(t, 'x', rec.Screen.At(1, 0).Rune)
}

func TestApplyPatches_StyleCoalescing(t *testing.T) {
	cur := terminal.NewGrid(6, 1)
	cur.PutString("ab", 0, 0, terminal.White, terminal.Black)
	cur.PutString("cd", 2, 0, terminal.Red, terminal.Black)
	cur.PutString("ef", 4, 0, terminal.Red, terminal.Blue)

	rec := terminaltest.NewRecorder(6, 1)
	terminal.ApplyPatches(rec, cur.Diff(terminal.NewGrid(6, 1)))

	// Initial default assertion (fg+bg), then one fg change and one bg change
	assert.Equal(t, 2, rec.Count(terminaltest.OpFg))
	assert.Equal(t, 2, rec.Count(terminaltest.OpBg))
	assert.Equal(t, "abcdef", rec.Row(0))
}

func TestApplyPatches_EmptyEmitsNothing(t *testing.T) {
	rec := terminaltest.NewRecorder(3, 3)
	terminal.ApplyPatches(rec, nil)
	assert.Empty(t, rec.Ops)
}

func TestApplyPatches_ReproducesFrame(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	prev := terminal.NewGrid(20, 8)
	rec := terminaltest.NewRecorder(20, 8)
	require.NoError(t, terminal.Flush(rec, prev))

	for frame := 0; frame < 20; frame++ {
		cur := terminal.NewGrid(20, 8)
		for i := 0; i < 30; i++ {
			cur.PutCell(rune('a'+rng.Intn(26)), rng.Intn(20), rng.Intn(8), terminal.Green, terminal.Black)
		}
		terminal.ApplyPatches(rec, cur.Diff(prev))
		assert.True(t, rec.Screen.Equal(cur), "frame %d", frame)
		prev = cur
	}
}

func TestFlush_FullRedraw(t *testing.T) {
	g := terminal.NewGrid(4, 2)
	g.PutString("ab", 0, 0, terminal.Black, terminal.White)
	g.PutString("cd", 2, 1, terminal.Red, terminal.Black)

	rec := terminaltest.NewRecorder(4, 2)
	require.NoError(t, terminal.Flush(rec, g))

	assert.Equal(t, terminaltest.OpClear, rec.Ops[0].Kind)
	assert.Equal(t, terminaltest.OpFlush, rec.Ops[len(rec.Ops)-1].Kind)
	assert.Equal(t, 8, rec.Count(terminaltest.OpPrint))
	assert.True(t, rec.Screen.Equal(g))
	// Default assertion + switch to black/white + back to white/black + red
	assert.Equal(t, 4, rec.Count(terminaltest.OpFg))
}

func TestFlush_PropagatesSinkError(t *testing.T) {
	rec := terminaltest.NewRecorder(2, 2)
	rec.Err = errors.New("broken pipe")
	assert.ErrorIs(t, terminal.Flush(rec, terminal.NewGrid(2, 2)), rec.Err)
}

func TestANSISink_TrueColorSequences(t *testing.T) {
	var buf bytes.Buffer
	s := terminal.NewANSISink(&buf, terminal.ColorModeTrueColor)

	s.MoveTo(4, 2)
	s.SetForeground(terminal.RGB{R: 1, G: 22, B: 255})
	s.SetBackground(terminal.Black)
	s.Print('x')
	s.Print('é')
	require.NoError(t, s.Flush())

	assert.Equal(t, "\x1b[3;5H\x1b[38;2;1;22;255m\x1b[48;2;0;0;0mxé", buf.String())
}

func TestANSISink_256Sequences(t *testing.T) {
	var buf bytes.Buffer
	s := terminal.NewANSISink(&buf, terminal.ColorMode256)

	s.SetForeground(terminal.White)
	s.SetBackground(terminal.Black)
	s.ClearScreen()
	require.NoError(t, s.Flush())

	assert.Equal(t, "\x1b[38;5;231m\x1b[48;5;16m\x1b[2J\x1b[H", buf.String())
}

func TestANSISink_BuffersUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	s := terminal.NewANSISink(&buf, terminal.ColorMode256)
	s.Print('a')
	assert.Zero(t, buf.Len())
	require.NoError(t, s.Flush())
	assert.Equal(t, "a", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("terminal gone") }

func TestANSISink_WriteErrorSurfacesOnFlush(t *testing.T) {
	s := terminal.NewANSISink(failingWriter{}, terminal.ColorMode256)
	s.Print('a')
	assert.EqualError(t, s.Flush(), "terminal gone")
}

func TestRGBTo256(t *testing.T) {
	tests := []struct {
		name string
		in   terminal.RGB
		want uint8
	}{
		{"black", terminal.Black, 16},
		{"white", terminal.White, 231},
		{"pure red", terminal.RGB{R: 255}, 196},
		{"mid gray", terminal.RGB{R: 128, G: 128, B: 128}, 244},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, terminal.RGBTo256(tt.in))
		})
	}
}
