package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/pkg/audio"
)

const module = "Recorder"

var ErrAlreadyRunning = errors.New("recorder already running")

type Config struct {
	Dir                string
	Extension          string
	ChunkDuration      time.Duration
	TickInterval       time.Duration
	QueueSize          int
	FlushPartialOnStop bool
}

// Chunk is a finished recording artifact handed to the transcription worker.
type Chunk struct {
	Index     int
	Path      string
	StartedAt time.Time
	EndedAt   time.Time
}

type ChunkHandler func(ctx context.Context, chunk Chunk)

type TickHandler func(elapsed time.Duration)

type activeChunk struct {
	index     int
	path      string
	startedAt time.Time
}

// Engine records audio in fixed-length chunks. Each finished chunk is queued
// to a single worker so handlers observe chunks in completion order while
// capture of the next chunk proceeds.
type Engine struct {
	sink        audio.Sink
	permissions audio.PermissionRequester
	cfg         Config
	logger      logger.ILogger

	mu         sync.Mutex
	running    bool
	startedAt  time.Time
	cancelLoop context.CancelFunc
	cancelTick context.CancelFunc
	loopDone   chan struct{}
	workerDone chan struct{}
	queue      chan Chunk
}

func NewEngine(sink audio.Sink, permissions audio.PermissionRequester, cfg Config, log logger.ILogger) *Engine {
	if permissions == nil {
		permissions = audio.AlwaysGranted{}
	}
	if cfg.ChunkDuration <= 0 {
		cfg.ChunkDuration = 30 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}
	if cfg.Extension == "" {
		cfg.Extension = "mp4"
	}
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	return &Engine{
		sink:        sink,
		permissions: permissions,
		cfg:         cfg,
		logger:      log,
	}
}

// Start requests microphone access and begins the chunk loop. A denied
// permission is not an error: it is logged and started is false.
func (e *Engine) Start(ctx context.Context, onChunk ChunkHandler, onTick TickHandler) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return false, ErrAlreadyRunning
	}

	granted, err := e.permissions.RequestMicrophone(ctx)
	if err != nil {
		e.logger.Error(module, "Microphone permission request failed", map[string]interface{}{"error": err.Error()})
		return false, nil
	}
	if !granted {
		e.logger.Warn(module, "Microphone permission denied", nil)
		return false, nil
	}

	if err := os.MkdirAll(e.cfg.Dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to prepare audio directory: %w", err)
	}

	first, err := e.beginChunk(1)
	if err != nil {
		return false, err
	}

	// Recording outlives the request that started it.
	base := context.WithoutCancel(ctx)
	loopCtx, cancelLoop := context.WithCancel(base)
	tickCtx, cancelTick := context.WithCancel(base)

	e.startedAt = first.startedAt
	e.queue = make(chan Chunk, e.cfg.QueueSize)
	e.loopDone = make(chan struct{})
	e.workerDone = make(chan struct{})
	e.cancelLoop = cancelLoop
	e.cancelTick = cancelTick
	e.running = true

	go e.work(base, e.queue, onChunk, e.workerDone)
	go e.run(loopCtx, first, e.queue, e.loopDone)
	if onTick != nil {
		go e.tick(tickCtx, e.startedAt, onTick)
	}

	e.logger.Info(module, "Recording started", map[string]interface{}{
		"chunk_duration": e.cfg.ChunkDuration.String(),
		"dir":            e.cfg.Dir,
	})
	return true, nil
}

// Stop cancels the chunk timer and the ticker and stops the active capture.
// It returns once the chunk loop has exited; queued chunks keep being handled.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancelLoop, cancelTick, loopDone := e.cancelLoop, e.cancelTick, e.loopDone
	e.mu.Unlock()

	cancelTick()
	cancelLoop()
	<-loopDone

	e.logger.Info(module, "Recording stopped", nil)
}

// Wait blocks until every queued chunk has been handled. Only meaningful
// after Stop.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.workerDone
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startedAt.IsZero() {
		return 0
	}
	return time.Since(e.startedAt)
}

func (e *Engine) chunkPath(index int, at time.Time) string {
	name := fmt.Sprintf("chunk_%d_%d.%s", at.UnixNano(), index, e.cfg.Extension)
	return filepath.Join(e.cfg.Dir, name)
}

func (e *Engine) beginChunk(index int) (*activeChunk, error) {
	now := time.Now()
	path := e.chunkPath(index, now)
	if err := e.sink.Start(path); err != nil {
		return nil, fmt.Errorf("failed to start chunk %d: %w", index, err)
	}
	return &activeChunk{index: index, path: path, startedAt: now}, nil
}

func (e *Engine) run(ctx context.Context, current *activeChunk, queue chan<- Chunk, done chan<- struct{}) {
	defer close(done)
	defer close(queue)

	timer := time.NewTimer(e.cfg.ChunkDuration)
	defer timer.Stop()

	next := 2
	for {
		select {
		case <-ctx.Done():
			if current != nil {
				e.finishPartial(current, queue)
			}
			return

		case <-timer.C:
			if current != nil {
				e.finishChunk(current, queue)
			}

			var err error
			current, err = e.beginChunk(next)
			if err != nil {
				e.logger.Error(module, "Failed to start next chunk", map[string]interface{}{
					"chunk": next,
					"error": err.Error(),
				})
				current = nil
			}
			next++
			timer.Reset(e.cfg.ChunkDuration)
		}
	}
}

func (e *Engine) finishChunk(c *activeChunk, queue chan<- Chunk) {
	if err := e.sink.Stop(); err != nil {
		e.logger.Warn(module, "Capture stop reported an error", map[string]interface{}{
			"chunk": c.index,
			"error": err.Error(),
		})
	}

	if _, err := os.Stat(c.path); err != nil {
		e.logger.Warn(module, "Recording artifact missing, chunk dropped", map[string]interface{}{
			"chunk": c.index,
			"path":  c.path,
		})
		return
	}

	chunk := Chunk{Index: c.index, Path: c.path, StartedAt: c.startedAt, EndedAt: time.Now()}
	select {
	case queue <- chunk:
	default:
		e.logger.Error(module, "Transcription queue full, chunk dropped", map[string]interface{}{
			"chunk": c.index,
			"path":  c.path,
		})
		_ = os.Remove(c.path)
	}
}

func (e *Engine) finishPartial(c *activeChunk, queue chan<- Chunk) {
	if e.cfg.FlushPartialOnStop {
		e.finishChunk(c, queue)
		return
	}
	if err := e.sink.Stop(); err != nil {
		e.logger.Warn(module, "Capture stop reported an error", map[string]interface{}{"error": err.Error()})
	}
	_ = os.Remove(c.path)
}

func (e *Engine) work(ctx context.Context, queue <-chan Chunk, onChunk ChunkHandler, done chan<- struct{}) {
	defer close(done)
	for chunk := range queue {
		if onChunk == nil {
			continue
		}
		e.handle(ctx, chunk, onChunk)
	}
}

func (e *Engine) handle(ctx context.Context, chunk Chunk, onChunk ChunkHandler) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(module, "Chunk handler panicked", map[string]interface{}{
				"chunk": chunk.Index,
				"panic": fmt.Sprint(r),
			})
		}
	}()
	onChunk(ctx, chunk)
}

func (e *Engine) tick(ctx context.Context, startedAt time.Time, onTick TickHandler) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			onTick(now.Sub(startedAt))
		}
	}
}
