package logger_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name        string
		level       string
		debugLogged bool
		infoLogged  bool
	}{
		{name: "debug level", level: "debug", debugLogged: true, infoLogged: true},
		{name: "info level", level: "info", debugLogged: false, infoLogged: true},
		{name: "upper case", level: "DEBUG", debugLogged: true, infoLogged: true},
		{name: "unknown level falls back to info", level: "verbose", debugLogged: false, infoLogged: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")

			assert.Equal(t, tc.debugLogged, strings.Contains(buf.String(), "debug message"))
			assert.Equal(t, tc.infoLogged, strings.Contains(buf.String(), "info message"))
			assert.Same(t, l, slog.Default(), "Setup should install the logger as default")
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, buf)
	require.NoError(t, err)

	l.Info("structured", "user_id", 7)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "structured", entries[0]["msg"])
	assert.Equal(t, float64(7), entries[0]["user_id"])
}

func TestContextLogger(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("missing logger returns fallback", func(t *testing.T) {
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("stored logger is returned", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
		assert.Same(t, scoped, logger.FromContext(ctx))
	})

	t.Run("nil context returns fallback", func(t *testing.T) {
		//nolint:staticcheck // nil context is tolerated on purpose
		assert.Same(t, fallback, logger.FromContextOrDefault(nil, fallback))
	})
}

func TestParseLevel(t *testing.T) {
	level, ok := logger.ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = logger.ParseLevel("fatal")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

