package client

import "github.com/lixenwraith/simple-chat/terminal"

// StatusBar renders label in reverse video across row y, padded to w
func StatusBar(g *terminal.Grid, label string, x, y, w int) {
	runes := []rune(label)
	if len(runes) > w {
		runes = runes[:max(w, 0)]
	}
	g.PutRun(runes, x, y, terminal.Black, terminal.White)
	for px := x + len(runes); px < w; px++ {
		g.PutCell(' ', px, y, terminal.Black, terminal.White)
	}
}
