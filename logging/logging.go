// Package logging routes slog output away from the TUI.
// Stdout and stderr belong to the screen while the client runs, so records go to
// a file when debugging and are discarded otherwise.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
)

// DefaultFile is the log file name used when debug logging is enabled without a path
const DefaultFile = "simple-chat.log"

var logger = slog.New(slog.DiscardHandler)

// Setup installs the process logger and returns a closer for the log file
// With debug off every record is dropped
func Setup(debug bool, path string) (io.Closer, error) {
	if !debug {
		logger = slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		return io.NopCloser(nil), nil
	}

	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create log directory %s", dir)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}

	Use(f, slog.LevelDebug)
	return f, nil
}

// Use points the logger at w; colors are off since the target is usually a file
func Use(w io.Writer, level slog.Level) {
	logger = slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	}))
	slog.SetDefault(logger)
}

// Logger returns the active logger
func Logger() *slog.Logger {
	return logger
}

func log(level slog.Level, subsystem string, err error, format string, args ...any) {
	if !logger.Enabled(context.Background(), level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, tint.Err(err))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func Debug(subsystem, format string, args ...any) {
	log(slog.LevelDebug, subsystem, nil, format, args...)
}

func Info(subsystem, format string, args ...any) {
	log(slog.LevelInfo, subsystem, nil, format, args...)
}

func Warn(subsystem, format string, args ...any) {
	log(slog.LevelWarn, subsystem, nil, format, args...)
}

// Error logs msg with err attached under the "err" key
func Error(subsystem string, err error, format string, args ...any) {
	log(slog.LevelError, subsystem, err, format, args...)
}
