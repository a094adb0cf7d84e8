// Command keytest shows how the terminal backends decode keys.
// Useful for checking bindings such as Backspace vs Ctrl+H on a given terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/simple-chat/client"
	"github.com/lixenwraith/simple-chat/terminal"
)

const maxLog = 10

func main() {
	var backend, color string

	cmd := &cobra.Command{
		Use:          "keytest",
		Short:        "Print decoded key events; Ctrl+C or Ctrl+Q quits",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), backend, terminal.ParseColorMode(color))
		},
	}
	cmd.Flags().StringVar(&backend, "backend", terminal.BackendANSI, "Terminal backend: ansi, tcell")
	cmd.Flags().StringVar(&color, "color", "auto", "Color mode: auto, truecolor, 256")

	if err := fang.Execute(context.Background(), cmd,
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, "keytest:", err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, backend string, mode terminal.ColorMode) error {
	term, err := terminal.Open(backend, mode)
	if err != nil {
		return err
	}
	if err := term.Init(); err != nil {
		return errors.Wrap(err, "initialize terminal")
	}
	defer term.Fini()

	w, h := term.Size()
	curr, prev := terminal.NewGrid(w, h), terminal.NewGrid(w, h)
	log := client.NewChatLog()
	sink := term.Sink()

	if err := terminal.Flush(sink, prev); err != nil {
		return err
	}

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		for {
			ev, ok := term.PollEvent()
			if !ok {
				break
			}
			switch ev.Type {
			case terminal.EventKey:
				if ev.Key == terminal.KeyCtrlC || ev.Key == terminal.KeyCtrlQ {
					return nil
				}
			case terminal.EventResize:
				w, h = ev.Width, ev.Height
				curr, prev = terminal.NewGrid(w, h), terminal.NewGrid(w, h)
				if err := terminal.Flush(sink, prev); err != nil {
					return err
				}
			case terminal.EventClosed:
				return nil
			}
			log.Append(describe(ev), tagFor(ev))
		}

		curr.Clear()
		client.StatusBar(curr, "keytest: press keys, Ctrl+C to quit", 0, 0, w)
		recent := client.NewChatLog()
		entries := log.Entries()
		for _, e := range entries[max(0, len(entries)-maxLog):] {
			recent.Append(e.Message, e.Tag)
		}
		recent.Render(curr, 1, 2)
		client.StatusBar(curr, fmt.Sprintf("Size: %dx%d  Backend: %s", w, h, backend), 0, h-1, w)

		terminal.ApplyPatches(sink, curr.Diff(prev))
		if err := sink.Flush(); err != nil {
			return err
		}
		curr, prev = prev, curr

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func tagFor(ev terminal.Event) client.Tag {
	switch ev.Type {
	case terminal.EventError:
		return client.TagError
	case terminal.EventResize:
		return client.TagInfo
	default:
		return client.TagPlain
	}
}

// describe renders an event as a single log line
func describe(ev terminal.Event) string {
	switch ev.Type {
	case terminal.EventResize:
		return fmt.Sprintf("RESIZE: %dx%d", ev.Width, ev.Height)
	case terminal.EventError:
		return fmt.Sprintf("ERROR: %v", ev.Err)
	case terminal.EventClosed:
		return "CLOSED"
	}

	var mods string
	if ev.Modifiers&terminal.ModShift != 0 {
		mods += "Shift+"
	}
	if ev.Modifiers&terminal.ModAlt != 0 {
		mods += "Alt+"
	}
	if ev.Modifiers&terminal.ModCtrl != 0 {
		mods += "Ctrl+"
	}

	name := ev.Key.String()
	if ev.Key == terminal.KeyRune {
		if ev.Rune >= 0x20 && ev.Rune < 0x7f {
			name = fmt.Sprintf("'%c'", ev.Rune)
		} else {
			name = fmt.Sprintf("U+%04X", ev.Rune)
		}
	}
	return "KEY: " + mods + name
}
