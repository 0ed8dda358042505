package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	t.Run("console to stderr", func(t *testing.T) {
		l, err := New(&Config{Level: "debug", Format: "console", Output: "stderr"}, "migrate")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("json file with service field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fieldops.log")
		l, err := New(&Config{Level: "info", Format: "json", Output: path}, "fieldops")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

		l.Info("receipt recorded")
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"receipt recorded"`)
		assert.Contains(t, string(data), `"service":"fieldops"`)
	})

	t.Run("unwritable output", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")}, "")
		assert.Error(t, err)
	})
}
