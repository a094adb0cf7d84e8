package terminal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_DefaultCells(t *testing.T) {
	g := NewGrid(4, 2)
	require.Len(t, g.Cells(), 8)
	for _, c := range g.Cells() {
		assert.Equal(t, DefaultCell, c)
	}
}

func TestNewGrid_NegativeSizeClamps(t *testing.T) {
	g := NewGrid(-3, 5)
	assert.Equal(t, 0, g.Width())
	assert.Empty(t, g.Cells())
	assert.Empty(t, g.Diff(NewGrid(0, 5)))
}

func TestPutCell_OutOfBoundsDropped(t *testing.T) {
	g := NewGrid(3, 2)
	before := append([]Cell(nil), g.Cells()...)

	for _, pos := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {100, 100}} {
		g.PutCell('x', pos[0], pos[1], Red, Blue)
	}

	assert.Equal(t, before, g.Cells())
}

func TestPutCell_RowMajor(t *testing.T) {
	g := NewGrid(3, 2)
	g.PutCell('z', 1, 1, Red, Blue)

	assert.Equal(t, Cell{Rune: 'z', Fg: Red, Bg: Blue}, g.Cells()[4])
	assert.Equal(t, Cell{Rune: 'z', Fg: Red, Bg: Blue}, g.At(1, 1))
}

func TestPutRun_TruncatesAtRowEdge(t *testing.T) {
	g := NewGrid(4, 2)
	g.PutString("abcdef", 2, 0, White, Black)

	assert.Equal(t, 'a', g.At(2, 0).Rune)
	assert.Equal(t, 'b', g.At(3, 0).Rune)
	// No wrap into the next row
	for x := 0; x < 4; x++ {
		assert.Equal(t, ' ', g.At(x, 1).Rune)
	}
}

func TestPutRun_OffscreenRowIgnored(t *testing.T) {
	g := NewGrid(4, 2)
	g.PutString("abc", 0, 2, White, Black)
	g.PutString("abc", 0, -1, White, Black)
	assert.True(t, g.Equal(NewGrid(4, 2)))
}

func TestPutRun_NegativeStartSkipsPrefix(t *testing.T) {
	g := NewGrid(4, 1)
	g.PutString("abc", -1, 0, White, Black)
	assert.Equal(t, 'b', g.At(0, 0).Rune)
	assert.Equal(t, 'c', g.At(1, 0).Rune)
}

func TestClear_ResetsEveryCell(t *testing.T) {
	g := NewGrid(5, 3)
	g.PutString("hello", 0, 1, Red, Green)
	g.Clear()
	assert.True(t, g.Equal(NewGrid(5, 3)))
}

func TestDiff_HiScenario(t *testing.T) {
	cur := NewGrid(10, 3)
	cur.PutString("hi", 0, 0, White, Black)

	patches := cur.Diff(NewGrid(10, 3))

	require.Len(t, patches, 2)
	assert.Equal(t, Patch{Cell: Cell{Rune: 'h', Fg: White, Bg: Black}, X: 0, Y: 0}, patches[0])
	assert.Equal(t, Patch{Cell: Cell{Rune: 'i', Fg: White, Bg: Black}, X: 1, Y: 0}, patches[1])
}

func TestDiff_SameGridEmpty(t *testing.T) {
	g := randomGrid(rand.New(rand.NewSource(1)), 12, 7)
	assert.Empty(t, g.Diff(g))
}

func TestDiff_ColorOnlyChange(t *testing.T) {
	a := NewGrid(3, 1)
	b := NewGrid(3, 1)
	a.PutCell(' ', 1, 0, White, Red)

	patches := a.Diff(b)
	require.Len(t, patches, 1)
	assert.Equal(t, 1, patches[0].X)
	assert.Equal(t, Red, patches[0].Cell.Bg)
}

func TestDiff_AscendingOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := randomGrid(rng, 9, 5)
	b := randomGrid(rng, 9, 5)

	patches := a.Diff(b)
	for i := 1; i < len(patches); i++ {
		prev := patches[i-1].Y*9 + patches[i-1].X
		cur := patches[i].Y*9 + patches[i].X
		assert.Less(t, prev, cur)
	}
}

func TestDiff_ApplyReconstructs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		w, h := rng.Intn(20)+1, rng.Intn(10)+1
		a := randomGrid(rng, w, h)
		b := randomGrid(rng, w, h)

		b.Apply(a.Diff(b))
		assert.True(t, a.Equal(b), "iteration %d", i)
	}
}

func TestDiff_MismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewGrid(10, 3).Diff(NewGrid(10, 4))
	})
	assert.Panics(t, func() {
		NewGrid(9, 3).Diff(NewGrid(10, 3))
	})
}

func randomGrid(rng *rand.Rand, w, h int) *Grid {
	palette := []RGB{White, Black, Red, Blue}
	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if rng.Intn(3) == 0 {
				continue
			}
			g.PutCell(rune('a'+rng.Intn(3)), x, y, palette[rng.Intn(len(palette))], palette[rng.Intn(len(palette))])
		}
	}
	return g
}
