package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	file := filepath.Join(t.TempDir(), "monitor.log")

	l, err := New("WARN", file)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l.Warn("threshold crossed", zap.String("symbol", "ETH"))
	_ = l.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"threshold crossed"`)
	assert.Contains(t, string(data), `"symbol":"ETH"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("chatty", "")
	assert.Error(t, err)
}

func TestInstallSlog(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	core, logs := observer.New(zapcore.InfoLevel)
	InstallSlog(zap.New(core))

	slog.Info("Targets loaded", "count", 3)
	slog.Debug("dropped")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Targets loaded", entry.Message)
	assert.EqualValues(t, 3, entry.ContextMap()["count"])
}
