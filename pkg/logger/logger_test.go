package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logr, err := New(Options{Level: "DEBUG", Service: "crosspost"})
	require.NoError(t, err)
	assert.True(t, logr.Core().Enabled(zapcore.DebugLevel))

	logr, err = New(Options{})
	require.NoError(t, err)
	assert.False(t, logr.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logr.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}
