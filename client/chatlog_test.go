package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/simple-chat/terminal"
)

func TestChatLogAppendOrder(t *testing.T) {
	l := NewChatLog()
	_, ok := l.Last()
	assert.False(t, ok)

	l.Plain("one")
	l.Info("two")
	l.Error("three")

	assert.Equal(t, []Entry{
		{Message: "one", Tag: TagPlain},
		{Message: "two", Tag: TagInfo},
		{Message: "three", Tag: TagError},
	}, l.Entries())

	last, ok := l.Last()
	assert.True(t, ok)
	assert.Equal(t, "three", last.Message)
}

func TestChatLogFlattensControlCharacters(t *testing.T) {
	l := NewChatLog()
	l.Plain("line one\nline\ttwo\r\n")
	assert.Equal(t, "line one line two", l.Entries()[0].Message)
}

func TestChatLogRender(t *testing.T) {
	g := terminal.NewGrid(6, 3)
	l := NewChatLog()
	l.Plain("hello world")
	l.Error("err")
	l.Info("dropped")

	l.Render(g, 0, 1)

	assert.Equal(t, terminal.DefaultCell, g.At(0, 0))
	assert.Equal(t, terminal.Cell{Rune: 'h', Fg: terminal.White, Bg: terminal.Black}, g.At(0, 1))
	assert.Equal(t, "hello ", rowString(g, 1), "no wrapping past the right edge")
	assert.Equal(t, terminal.Cell{Rune: 'e', Fg: terminal.Red, Bg: terminal.Black}, g.At(0, 2))
}

func TestTagColor(t *testing.T) {
	assert.Equal(t, terminal.White, TagPlain.Color())
	assert.Equal(t, terminal.Cyan, TagInfo.Color())
	assert.Equal(t, terminal.Red, TagError.Color())
	assert.Equal(t, "error", TagError.String())
}
