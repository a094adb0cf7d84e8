//go:build !linux

package terminal

// resetTerminalMode is a no-op where termios ioctls differ; escape sequences still run
func resetTerminalMode() {}
