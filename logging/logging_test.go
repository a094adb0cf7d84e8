package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabledDiscards(t *testing.T) {
	closer, err := Setup(false, filepath.Join(t.TempDir(), "never.log"))
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	Info("test", "dropped %d", 1)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func TestSetupDebugWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat.log")

	closer, err := Setup(true, path)
	require.NoError(t, err)

	Debug("client", "tick %d", 7)
	Error("network", errors.New("boom"), "send failed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "tick 7")
	assert.Contains(t, out, "subsystem=client")
	assert.Contains(t, out, "send failed")
	assert.Contains(t, out, "err=boom")

	Use(&bytes.Buffer{}, slog.LevelInfo)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Use(&buf, slog.LevelWarn)
	t.Cleanup(func() { Setup(false, "") })

	Info("config", "hidden")
	Warn("config", "shown %s", "here")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown here")
	assert.Contains(t, buf.String(), "subsystem=config")
}
