package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHUNK_DURATION", "")
	t.Setenv("STOP_POLL_ATTEMPTS", "")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Recording.ChunkDuration)
	assert.Equal(t, time.Second, cfg.Recording.TickInterval)
	assert.Equal(t, 10, cfg.Pipeline.StopPollAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.StopPollInterval)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.TitleTimeout)
	assert.Equal(t, "sessions", cfg.Cloud.SessionsCollection)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHUNK_DURATION", "5s")
	t.Setenv("STOP_POLL_ATTEMPTS", "3")
	t.Setenv("KEEP_AUDIO_CHUNKS", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.Recording.ChunkDuration)
	assert.Equal(t, 3, cfg.Pipeline.StopPollAttempts)
	assert.True(t, cfg.Recording.KeepAudioChunks)
	assert.True(t, cfg.IsProduction())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "soon")
	t.Setenv("MIRROR_QUEUE_SIZE", "many")
	t.Setenv("SYNC_ON_START", "maybe")

	cfg := Load()

	assert.Equal(t, time.Second, cfg.Recording.TickInterval)
	assert.Equal(t, 256, cfg.Pipeline.MirrorQueueSize)
	assert.True(t, cfg.App.SyncOnStart)
}
