package client

import (
	"strings"

	"github.com/lixenwraith/simple-chat/terminal"
)

// Tag classifies a chat log entry for coloring
type Tag uint8

const (
	TagPlain Tag = iota
	TagInfo
	TagError
)

// Color returns the foreground color for the tag
func (t Tag) Color() terminal.RGB {
	switch t {
	case TagInfo:
		return terminal.Cyan
	case TagError:
		return terminal.Red
	default:
		return terminal.White
	}
}

func (t Tag) String() string {
	switch t {
	case TagInfo:
		return "info"
	case TagError:
		return "error"
	default:
		return "plain"
	}
}

// Entry is one rendered chat log line
type Entry struct {
	Message string
	Tag     Tag
}

// ChatLog is the append-only message history
type ChatLog struct {
	entries []Entry
}

// NewChatLog creates an empty log
func NewChatLog() *ChatLog {
	return &ChatLog{}
}

// Append adds a line; control characters are flattened to spaces so one entry stays one row
func (l *ChatLog) Append(msg string, tag Tag) {
	msg = strings.TrimRight(msg, "\r\n")
	msg = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, msg)
	l.entries = append(l.entries, Entry{Message: msg, Tag: tag})
}

func (l *ChatLog) Plain(msg string) { l.Append(msg, TagPlain) }
func (l *ChatLog) Info(msg string)  { l.Append(msg, TagInfo) }
func (l *ChatLog) Error(msg string) { l.Append(msg, TagError) }

// Len returns the number of entries
func (l *ChatLog) Len() int {
	return len(l.entries)
}

// Entries returns the history, oldest first
func (l *ChatLog) Entries() []Entry {
	return l.entries
}

// Last returns the newest entry
func (l *ChatLog) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Render writes one row per entry from (x, y) downwards, oldest first
// Rows past the grid are dropped by the grid
func (l *ChatLog) Render(g *terminal.Grid, x, y int) {
	for dy, e := range l.entries {
		if y+dy >= g.Height() {
			return
		}
		g.PutString(e.Message, x, y+dy, e.Tag.Color(), terminal.Black)
	}
}
