package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/simple-chat/terminal"
)

func rowString(g *terminal.Grid, y int) string {
	runes := make([]rune, g.Width())
	for x := range runes {
		runes[x] = g.At(x, y).Rune
	}
	return string(runes)
}

func TestStatusBarPadsInReverseVideo(t *testing.T) {
	g := terminal.NewGrid(10, 1)
	StatusBar(g, "Offline", 0, 0, 10)

	assert.Equal(t, "Offline   ", rowString(g, 0))
	for x := 0; x < 10; x++ {
		assert.Equal(t, terminal.Black, g.At(x, 0).Fg)
		assert.Equal(t, terminal.White, g.At(x, 0).Bg)
	}
}

func TestStatusBarTruncates(t *testing.T) {
	g := terminal.NewGrid(4, 1)
	StatusBar(g, "simple-chat", 0, 0, 4)
	assert.Equal(t, "simp", rowString(g, 0))
}
