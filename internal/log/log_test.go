package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	return logs
}

func TestLevels(t *testing.T) {
	logs := observe(t)

	Debug("debug msg")
	Info("info msg", "count", 3)
	Warn("warn msg")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, int64(3), entries[1].ContextMap()["count"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestErrorCarriesErr(t *testing.T) {
	logs := observe(t)

	Error("load failed", errors.New("boom"), "source", "ics")

	entries := logs.FilterMessage("load failed").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["err"])
	assert.Equal(t, "ics", fields["source"])
}

func TestOddTrailingKeyDropped(t *testing.T) {
	logs := observe(t)

	Info("odd", "a", 1, "dangling")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Len(t, fields, 1)
	assert.Equal(t, int64(1), fields["a"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
