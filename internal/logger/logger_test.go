package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/bookstore/internal/config"
)

func TestInitReplacesGlobals(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	l, err := Init(&config.LogConfig{Level: "warn", Encoding: "json"})
	require.NoError(t, err)
	assert.Same(t, l, zap.L())
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, err := Init(&config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
