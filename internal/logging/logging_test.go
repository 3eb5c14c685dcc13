package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewQuietByDefault(t *testing.T) {
	t.Parallel()

	logger := New(false)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	t.Parallel()

	logger := New(true)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
