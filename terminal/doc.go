// Package terminal provides direct ANSI terminal control with frame diffing.
//
// Features:
//   - Cell grid screen buffers with frame-to-frame diffing
//   - Patch emission that skips cursor moves for horizontally adjacent cells
//   - True color (24-bit) and 256-color palette output
//   - Raw stdin input parsing with escape sequence handling
//   - SIGWINCH resize detection
//   - Clean terminal restoration on exit/panic
//   - Alternate tcell backend driving the same operation stream
//
// The ANSI backend bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
