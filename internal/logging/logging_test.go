package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetupWritesToFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	path := filepath.Join(t.TempDir(), "drum.log")
	log, closer, err := Setup(path, "debug")
	require.NoError(t, err)
	log.Debug("transition", "from", "idle", "to", "recording")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging started")
	assert.Contains(t, string(data), "msg=transition from=idle to=recording")
}

func TestSetupLevelFilters(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	path := filepath.Join(t.TempDir(), "drum.log")
	log, closer, err := Setup(path, "warn")
	require.NoError(t, err)
	log.Info("quiet")
	log.Warn("loud")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestSetupWithoutPath(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	log, closer, err := Setup("", "info")
	require.NoError(t, err)
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
	assert.NoError(t, closer.Close())
}

func TestSetupBadLevel(t *testing.T) {
	_, _, err := Setup("", "chatty")
	assert.Error(t, err)
}
