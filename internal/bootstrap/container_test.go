package bootstrap

import (
	"testing"
	"time"

	"ai-memory-capture/internal/config"
	"ai-memory-capture/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecorderFactory_RejectsEmptyCommand(t *testing.T) {
	_, err := newRecorderFactory(config.RecordingConfig{CaptureCommand: "  "}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestNewRecorderFactory_FreshEnginePerSession(t *testing.T) {
	factory, err := newRecorderFactory(config.RecordingConfig{
		AudioDir:       t.TempDir(),
		CaptureCommand: "sox -q -d {path}",
		ChunkDuration:  time.Second,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	first, second := factory(), factory()
	require.NotNil(t, first)
	assert.NotSame(t, first, second)
}
