package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-memory-capture/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptionService_Transcribe(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "chunk_1.mp4")
	bad := filepath.Join(dir, "chunk_2.mp4")
	require.NoError(t, os.WriteFile(ok, []byte("hello there"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("noise"), 0o644))

	transcriber := &fakeTranscriber{fail: map[string]bool{"chunk_2.mp4": true}}
	svc := NewTranscriptionService(transcriber, false, logger.NewNopLogger())
	ctx := context.Background()

	assert.Equal(t, "hello there", svc.Transcribe(ctx, ok))
	_, err := os.Stat(ok)
	assert.True(t, os.IsNotExist(err), "audio removed after success")

	assert.Equal(t, SentinelTranscriptionFailed, svc.Transcribe(ctx, bad))
	_, err = os.Stat(bad)
	assert.NoError(t, err, "audio kept after failure")

	assert.Equal(t, SentinelTranscriptionFailed, svc.Transcribe(ctx, filepath.Join(dir, "missing.mp4")))
}

func TestTranscriptionService_KeepAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunk_1.mp4")
	require.NoError(t, os.WriteFile(path, []byte("kept"), 0o644))

	svc := NewTranscriptionService(&fakeTranscriber{}, true, logger.NewNopLogger())
	assert.Equal(t, "kept", svc.Transcribe(context.Background(), path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
