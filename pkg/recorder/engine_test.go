package recorder

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-memory-capture/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink writes a file for each capture on Stop, except for the capture
// numbers listed in missing.
type fakeSink struct {
	mu      sync.Mutex
	starts  int
	current string
	missing map[int]bool
}

func (s *fakeSink) Start(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	s.current = path
	return nil
}

func (s *fakeSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return nil
	}
	if !s.missing[s.starts] {
		if err := os.WriteFile(s.current, []byte("audio"), 0o644); err != nil {
			return err
		}
	}
	s.current = ""
	return nil
}

type denyAll struct{ err error }

func (d denyAll) RequestMicrophone(ctx context.Context) (bool, error) { return false, d.err }

func testConfig(t *testing.T) Config {
	return Config{
		Dir:           t.TempDir(),
		Extension:     "mp4",
		ChunkDuration: 20 * time.Millisecond,
		TickInterval:  5 * time.Millisecond,
		QueueSize:     64,
	}
}

type collector struct {
	mu      sync.Mutex
	indexes []int
}

func (c *collector) handle(ctx context.Context, chunk Chunk) {
	c.mu.Lock()
	c.indexes = append(c.indexes, chunk.Index)
	c.mu.Unlock()
}

func (c *collector) snapshot() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.indexes...)
}

func TestEngine_ChunksHandledInOrder(t *testing.T) {
	sink := &fakeSink{}
	engine := NewEngine(sink, nil, testConfig(t), logger.NewNopLogger())
	c := &collector{}

	started, err := engine.Start(context.Background(), c.handle, nil)
	require.NoError(t, err)
	require.True(t, started)

	require.Eventually(t, func() bool { return len(c.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	engine.Stop()
	engine.Wait()

	got := c.snapshot()
	for i, idx := range got {
		assert.Equal(t, i+1, idx)
	}
}

func TestEngine_MissingArtifactSkipsChunk(t *testing.T) {
	sink := &fakeSink{missing: map[int]bool{2: true}}
	engine := NewEngine(sink, nil, testConfig(t), logger.NewNopLogger())
	c := &collector{}

	_, err := engine.Start(context.Background(), c.handle, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(c.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	engine.Stop()
	engine.Wait()

	got := c.snapshot()
	assert.Equal(t, []int{1, 3, 4}, got[:3])
	assert.NotContains(t, got, 2)
}

func TestEngine_SlowHandlerDoesNotBlockCapture(t *testing.T) {
	sink := &fakeSink{}
	engine := NewEngine(sink, nil, testConfig(t), logger.NewNopLogger())

	var mu sync.Mutex
	var order []int
	release := make(chan struct{})
	handler := func(ctx context.Context, chunk Chunk) {
		if chunk.Index == 1 {
			<-release
		}
		mu.Lock()
		order = append(order, chunk.Index)
		mu.Unlock()
	}

	_, err := engine.Start(context.Background(), handler, nil)
	require.NoError(t, err)

	// capture keeps producing while chunk 1 is blocked
	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.starts >= 4
	}, 2*time.Second, 5*time.Millisecond)

	engine.Stop()
	close(release)
	engine.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(order), 3)
	for i, idx := range order {
		assert.Equal(t, i+1, idx)
	}
}

func TestEngine_PermissionDenied(t *testing.T) {
	sink := &fakeSink{}
	for _, perms := range []denyAll{{}, {err: errors.New("boom")}} {
		engine := NewEngine(sink, perms, testConfig(t), logger.NewNopLogger())
		started, err := engine.Start(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.False(t, started)
		assert.False(t, engine.IsRunning())
	}
	assert.Zero(t, sink.starts)
}

func TestEngine_TicksIndependently(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChunkDuration = time.Hour
	engine := NewEngine(&fakeSink{}, nil, cfg, logger.NewNopLogger())

	var ticks atomic.Int32
	var last atomic.Int64
	_, err := engine.Start(context.Background(), nil, func(elapsed time.Duration) {
		ticks.Add(1)
		last.Store(int64(elapsed))
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
	engine.Stop()
	assert.Greater(t, time.Duration(last.Load()), time.Duration(0))

	time.Sleep(10 * time.Millisecond)
	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
}

func TestEngine_PartialChunkDiscardedOnStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChunkDuration = time.Hour
	engine := NewEngine(&fakeSink{}, nil, cfg, logger.NewNopLogger())
	c := &collector{}

	_, err := engine.Start(context.Background(), c.handle, nil)
	require.NoError(t, err)
	engine.Stop()
	engine.Wait()

	assert.Empty(t, c.snapshot())
	entries, err := os.ReadDir(cfg.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEngine_PartialChunkFlushedWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChunkDuration = time.Hour
	cfg.FlushPartialOnStop = true
	engine := NewEngine(&fakeSink{}, nil, cfg, logger.NewNopLogger())
	c := &collector{}

	_, err := engine.Start(context.Background(), c.handle, nil)
	require.NoError(t, err)
	engine.Stop()
	engine.Wait()

	assert.Equal(t, []int{1}, c.snapshot())
}

func TestEngine_StartTwice(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChunkDuration = time.Hour
	engine := NewEngine(&fakeSink{}, nil, cfg, logger.NewNopLogger())

	_, err := engine.Start(context.Background(), nil, nil)
	require.NoError(t, err)
	defer engine.Stop()

	_, err = engine.Start(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
