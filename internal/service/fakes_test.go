package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ai-memory-capture/internal/model"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/pkg/cloudstore"
	"ai-memory-capture/pkg/database"
	"ai-memory-capture/pkg/events"
	"ai-memory-capture/pkg/llm"
	"ai-memory-capture/pkg/recorder"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return unitofwork.NewRepositoryFactory(db)
}

// newTestCloud returns a cloud service over an in-memory store. Close the
// service to flush queued writes before asserting on the store.
func newTestCloud(t *testing.T) (ICloudService, *cloudstore.MemoryStore) {
	t.Helper()
	store := cloudstore.NewMemoryStore()
	cloud := NewCloudService(store, 64, logger.NewNopLogger())
	t.Cleanup(cloud.Close)
	return cloud, store
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	args := m.Called(ctx, history)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// systemPrompt matches a chat history whose system message starts with prefix.
func systemPrompt(prefix string) interface{} {
	return mock.MatchedBy(func(history []llm.Message) bool {
		return len(history) > 0 && history[0].Role == llm.RoleSystem &&
			len(history[0].Content) >= len(prefix) && history[0].Content[:len(prefix)] == prefix
	})
}

// fakeTranscriber reads the chunk file and returns its contents as text; a
// file named in fail returns an error.
type fakeTranscriber struct {
	mu   sync.Mutex
	fail map[string]bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	f.mu.Lock()
	failing := f.fail[filename]
	f.mu.Unlock()
	if failing {
		return "", errors.New("stt unavailable")
	}
	b, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fakeRecorder captures the handlers so tests can feed chunks directly.
type fakeRecorder struct {
	mu      sync.Mutex
	granted bool
	onChunk recorder.ChunkHandler
	onTick  recorder.TickHandler
	stopped bool
	next    int
}

func (r *fakeRecorder) Start(ctx context.Context, onChunk recorder.ChunkHandler, onTick recorder.TickHandler) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChunk = onChunk
	r.onTick = onTick
	return r.granted, nil
}

func (r *fakeRecorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

// emit writes text to a chunk file and hands it to the pipeline.
func (r *fakeRecorder) emit(t *testing.T, dir, text string) {
	t.Helper()
	r.mu.Lock()
	r.next++
	index := r.next
	handler := r.onChunk
	r.mu.Unlock()

	path := filepath.Join(dir, chunkName(index))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	handler(context.Background(), recorder.Chunk{Index: index, Path: path})
}

// emitAt is emit with explicit chunk boundaries.
func (r *fakeRecorder) emitAt(t *testing.T, dir, text string, startedAt, endedAt time.Time) {
	t.Helper()
	r.mu.Lock()
	r.next++
	index := r.next
	handler := r.onChunk
	r.mu.Unlock()

	path := filepath.Join(dir, chunkName(index))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	handler(context.Background(), recorder.Chunk{Index: index, Path: path, StartedAt: startedAt, EndedAt: endedAt})
}

func chunkName(index int) string {
	return fmt.Sprintf("chunk_%d.mp4", index)
}

type fixedLocation struct {
	value   string
	release chan struct{}
}

func (f *fixedLocation) Describe(ctx context.Context, latitude, longitude *float64) string {
	if f.release != nil {
		<-f.release
	}
	if f.value == "" {
		return LocationUnavailable
	}
	return f.value
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
