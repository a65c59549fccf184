package logger_test

import (
	"testing"

	"vitamart/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	log, err := logger.New("warn")
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Desugar().Core().Enabled(zap.WarnLevel))

	_, err = logger.New("loud")
	assert.Error(t, err)
}
