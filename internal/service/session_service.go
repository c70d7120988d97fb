package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/specification"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/pkg/events"
	"ai-memory-capture/pkg/recorder"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

type SessionState string

const (
	StateIdle      SessionState = "IDLE"
	StateStarting  SessionState = "STARTING"
	StateRecording SessionState = "RECORDING"
	StateStopping  SessionState = "STOPPING"
	StateFinalized SessionState = "FINALIZED"
)

const (
	sessionModule = "SessionPipeline"

	// DayGroupLayout labels the day buckets of session and question lists.
	DayGroupLayout = "Mon, Jan 2"
	// dayKeyLayout identifies a calendar day across years.
	dayKeyLayout = "2006-01-02"
)

var errTranscriptPending = errors.New("transcript pending")

// IRecorder is the part of the recording engine the pipeline drives.
type IRecorder interface {
	Start(ctx context.Context, onChunk recorder.ChunkHandler, onTick recorder.TickHandler) (bool, error)
	Stop()
}

// RecorderFactory builds a fresh recorder for each session.
type RecorderFactory func() IRecorder

type SessionConfig struct {
	StopPollAttempts int
	StopPollInterval time.Duration
	// TitleTimeout bounds title generation on stop; a caller deadline that
	// falls earlier wins.
	TitleTimeout time.Duration
}

type ISessionService interface {
	Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.SessionStateResponse, error)
	Stop(ctx context.Context) (*dto.SessionStateResponse, error)
	Snapshot() *dto.SessionStateResponse
	// ActiveTranscript returns the in-memory transcript when sessionId is the
	// session currently held by the pipeline.
	ActiveTranscript(sessionId uint) (string, bool)
	LoadExisting(ctx context.Context, id uint) (*dto.SessionDetailResponse, error)
	ListSessions(ctx context.Context) ([]dto.SessionDayGroup, error)
	Shutdown(ctx context.Context)
}

type activeSession struct {
	session   entity.Session
	cloudId   string
	recorder  IRecorder
	capturing bool

	mu          sync.Mutex
	transcripts []entity.Transcript
	title       string
	notice      string
	endedAt     time.Time
}

func (a *activeSession) append(t entity.Transcript) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcripts = append(a.transcripts, t)
}

func (a *activeSession) texts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.transcripts))
	for _, t := range a.transcripts {
		out = append(out, t.Text)
	}
	return out
}

func (a *activeSession) finish(title, notice string, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.title = title
	a.notice = notice
	if a.endedAt.IsZero() {
		a.endedAt = at
	}
}

type sessionService struct {
	uowFactory      unitofwork.RepositoryFactory
	recorderFactory RecorderFactory
	transcription   ITranscriptionService
	titles          ITitleService
	cloud           ICloudService
	location        ILocationService
	publisher       IPublisherService
	logger          logger.ILogger
	cfg             SessionConfig
	now             func() time.Time

	mu     sync.Mutex
	state  SessionState
	active *activeSession
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	recorderFactory RecorderFactory,
	transcription ITranscriptionService,
	titles ITitleService,
	cloud ICloudService,
	location ILocationService,
	publisher IPublisherService,
	log logger.ILogger,
	cfg SessionConfig,
) ISessionService {
	if cfg.StopPollAttempts <= 0 {
		cfg.StopPollAttempts = 10
	}
	if cfg.StopPollInterval <= 0 {
		cfg.StopPollInterval = 500 * time.Millisecond
	}
	if cfg.TitleTimeout <= 0 {
		cfg.TitleTimeout = 30 * time.Second
	}
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	return &sessionService{
		uowFactory:      uowFactory,
		recorderFactory: recorderFactory,
		transcription:   transcription,
		titles:          titles,
		cloud:           cloud,
		location:        location,
		publisher:       publisher,
		logger:          log,
		cfg:             cfg,
		now:             time.Now,
		state:           StateIdle,
	}
}

func (s *sessionService) Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.SessionStateResponse, error) {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateFinalized {
		s.mu.Unlock()
		return nil, ErrSessionActive
	}
	s.state = StateStarting
	s.active = nil
	s.mu.Unlock()
	s.publishState(ctx, StateStarting, nil)

	if req == nil {
		req = &dto.StartSessionRequest{}
	}
	location := s.location.Describe(ctx, req.Latitude, req.Longitude)

	now := s.now()
	cloudId := uuid.NewString()
	session := entity.Session{
		StartTime: now.Format(entity.StartTimeLayout),
		StartedAt: now,
		Location:  location,
		CloudId:   &cloudId,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		s.setState(StateIdle)
		s.logger.Error(sessionModule, "Failed to create session", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// Cloud outcome never blocks recording.
	s.cloud.CreateSession(session)

	active := &activeSession{
		session:  session,
		cloudId:  cloudId,
		recorder: s.recorderFactory(),
	}

	// The recording outlives the request that started it; Stop ends it.
	started, err := active.recorder.Start(context.Background(), s.chunkHandler(active), s.tickHandler(active))
	if err != nil {
		s.logger.Error(sessionModule, "Recorder failed to start", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
	active.capturing = started && err == nil

	s.mu.Lock()
	s.active = active
	s.state = StateRecording
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info(sessionModule, "Session started", map[string]interface{}{
		"session_id": session.Id,
		"cloud_id":   cloudId,
		"location":   location,
		"capturing":  active.capturing,
	})
	s.publish(ctx, events.SessionStarted, map[string]interface{}{
		"session_id": session.Id,
		"cloud_id":   cloudId,
		"location":   location,
		"start_time": session.StartTime,
		"capturing":  active.capturing,
	})

	return snap, nil
}

func (s *sessionService) Stop(ctx context.Context) (*dto.SessionStateResponse, error) {
	s.mu.Lock()
	switch s.state {
	case StateStarting:
		snap := s.snapshotLocked()
		s.mu.Unlock()
		snap.Notice = NoticeWaitBeforeStopping
		return snap, nil
	case StateRecording:
	default:
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	active := s.active
	s.state = StateStopping
	s.mu.Unlock()

	// Finishing the session must not depend on the caller staying connected,
	// but the caller's deadline still bounds the model call.
	deadline, hasDeadline := ctx.Deadline()
	ctx = context.WithoutCancel(ctx)
	s.publishState(ctx, StateStopping, active)

	active.recorder.Stop()
	endedAt := s.now()

	combined := s.collectTranscript(ctx, active)
	if strings.TrimSpace(combined) == "" {
		active.finish(UntitledSession, NoticeNoTranscript, endedAt)
		s.logger.Info(sessionModule, "Session stopped without transcript", map[string]interface{}{
			"session_id": active.session.Id,
		})
		return s.finalize(ctx, active), nil
	}

	titleCtx, cancel := s.titleContext(ctx, deadline, hasDeadline)
	title := s.titles.TitleFor(titleCtx, combined)
	cancel()
	active.finish(title, "", endedAt)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().UpdateTitle(ctx, active.session.Id, title); err != nil {
		s.logger.Error(sessionModule, "Failed to persist session title", map[string]interface{}{
			"session_id": active.session.Id,
			"error":      err.Error(),
		})
	}
	s.cloud.UpdateSessionTitle(active.cloudId, title)

	return s.finalize(ctx, active), nil
}

func (s *sessionService) titleContext(ctx context.Context, deadline time.Time, hasDeadline bool) (context.Context, context.CancelFunc) {
	limit := time.Now().Add(s.cfg.TitleTimeout)
	if hasDeadline && deadline.Before(limit) {
		limit = deadline
	}
	return context.WithDeadline(ctx, limit)
}

func (s *sessionService) finalize(ctx context.Context, active *activeSession) *dto.SessionStateResponse {
	s.mu.Lock()
	if s.active == active {
		s.state = StateFinalized
	}
	snap := snapshotOf(StateFinalized, active, s.now())
	s.mu.Unlock()

	s.publish(ctx, events.SessionFinalized, map[string]interface{}{
		"session_id": active.session.Id,
		"cloud_id":   active.cloudId,
		"title":      snap.Title,
	})
	return snap
}

// collectTranscript waits briefly for in-flight chunks, then falls back to
// the Local Store.
func (s *sessionService) collectTranscript(ctx context.Context, active *activeSession) string {
	texts, err := backoff.Retry(ctx, func() ([]string, error) {
		texts := active.texts()
		if len(texts) == 0 {
			return nil, errTranscriptPending
		}
		return texts, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.StopPollInterval)),
		backoff.WithMaxTries(uint(s.cfg.StopPollAttempts)),
	)
	if err == nil {
		return strings.Join(texts, " ")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.TranscriptRepository().FindAll(ctx, specification.BySessionID{SessionID: active.session.Id})
	if err != nil {
		s.logger.Error(sessionModule, "Failed to read stored transcripts", map[string]interface{}{
			"session_id": active.session.Id,
			"error":      err.Error(),
		})
		return ""
	}
	stored := make([]string, 0, len(rows))
	for _, r := range rows {
		stored = append(stored, r.Text)
	}
	return strings.Join(stored, " ")
}

func (s *sessionService) chunkHandler(active *activeSession) recorder.ChunkHandler {
	return func(ctx context.Context, chunk recorder.Chunk) {
		text := s.transcription.Transcribe(ctx, chunk.Path)
		if text == SentinelTranscriptionFailed || strings.TrimSpace(text) == "" {
			s.logger.Warn(sessionModule, "Chunk produced no transcript", map[string]interface{}{
				"session_id": active.session.Id,
				"chunk":      chunk.Index,
			})
			return
		}

		// Lines are stamped when their chunk finished recording.
		recordedAt := chunk.EndedAt
		if recordedAt.IsZero() {
			recordedAt = s.now()
		}
		transcript := entity.Transcript{
			SessionId:  active.session.Id,
			Timestamp:  recordedAt.Format(entity.TranscriptTimeLayout),
			RecordedAt: recordedAt,
			Text:       text,
		}
		active.append(transcript)

		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.TranscriptRepository().Create(ctx, &transcript); err != nil {
			s.logger.Error(sessionModule, "Transcript not durably saved", map[string]interface{}{
				"session_id": active.session.Id,
				"chunk":      chunk.Index,
				"error":      err.Error(),
			})
		}

		if active.cloudId != "" {
			s.cloud.AppendTranscriptChunk(active.cloudId, transcript)
		}

		s.publish(ctx, events.TranscriptAppended, map[string]interface{}{
			"session_id": active.session.Id,
			"chunk":      chunk.Index,
			"timestamp":  transcript.Timestamp,
			"text":       transcript.Text,
		})
	}
}

func (s *sessionService) tickHandler(active *activeSession) recorder.TickHandler {
	return func(elapsed time.Duration) {
		s.publish(context.Background(), events.RecordingTick, map[string]interface{}{
			"session_id":      active.session.Id,
			"elapsed_seconds": int64(elapsed.Seconds()),
		})
	}
}

func (s *sessionService) Snapshot() *dto.SessionStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *sessionService) snapshotLocked() *dto.SessionStateResponse {
	return snapshotOf(s.state, s.active, s.now())
}

func snapshotOf(state SessionState, active *activeSession, now time.Time) *dto.SessionStateResponse {
	snap := &dto.SessionStateResponse{
		State:       string(state),
		Transcripts: []dto.TranscriptLine{},
	}
	if active == nil {
		return snap
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	startedAt := active.session.StartedAt
	end := now
	if !active.endedAt.IsZero() {
		end = active.endedAt
	}

	snap.SessionId = active.session.Id
	snap.CloudId = active.cloudId
	snap.Title = active.title
	snap.Notice = active.notice
	snap.Location = active.session.Location
	snap.StartTime = active.session.StartTime
	snap.StartedAt = &startedAt
	snap.ElapsedSeconds = int64(end.Sub(startedAt).Seconds())
	snap.Capturing = active.capturing && state == StateRecording
	for _, t := range active.transcripts {
		snap.Transcripts = append(snap.Transcripts, dto.TranscriptLine{
			Timestamp:  t.Timestamp,
			RecordedAt: t.RecordedAt,
			Text:       t.Text,
		})
	}
	return snap
}

func (s *sessionService) ActiveTranscript(sessionId uint) (string, bool) {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil || active.session.Id != sessionId {
		return "", false
	}
	return strings.Join(active.texts(), " "), true
}

func (s *sessionService) LoadExisting(ctx context.Context, id uint) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	transcripts, err := uow.TranscriptRepository().FindAll(ctx, specification.BySessionID{SessionID: id})
	if err != nil {
		return nil, err
	}

	summary, err := uow.SummaryRepository().FindOne(ctx, specification.BySessionID{SessionID: id})
	if err != nil {
		return nil, err
	}

	title := session.TitleOr(Untitled)
	if summary != nil && summary.Title != "" {
		title = summary.Title
	}

	resp := &dto.SessionDetailResponse{
		Id:          session.Id,
		Title:       title,
		Location:    session.Location,
		StartTime:   session.StartTime,
		StartedAt:   session.StartedAt,
		Transcripts: make([]dto.TranscriptLine, 0, len(transcripts)),
	}
	if session.HasCloudId() {
		resp.CloudId = *session.CloudId
	}
	for _, t := range transcripts {
		resp.Transcripts = append(resp.Transcripts, dto.TranscriptLine{
			Id:         t.Id,
			Timestamp:  t.Timestamp,
			RecordedAt: t.RecordedAt,
			Text:       t.Text,
		})
	}
	return resp, nil
}

func (s *sessionService) ListSessions(ctx context.Context) ([]dto.SessionDayGroup, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx, specification.OrderBy{Field: "started_at", Desc: true})
	if err != nil {
		return nil, err
	}

	summaries, err := uow.SummaryRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[uint]string, len(summaries))
	for _, sum := range summaries {
		if sum.Title != "" {
			titles[sum.SessionId] = sum.Title
		}
	}

	groups := groupByDay(sessions, func(s *entity.Session) time.Time { return s.StartedAt })
	out := make([]dto.SessionDayGroup, 0, len(groups))
	for _, g := range groups {
		group := dto.SessionDayGroup{Day: g.day, Sessions: make([]dto.SessionListItem, 0, len(g.items))}
		for _, sess := range g.items {
			title, ok := titles[sess.Id]
			if !ok {
				title = sess.TitleOr(Untitled)
			}
			group.Sessions = append(group.Sessions, dto.SessionListItem{
				Id:        sess.Id,
				Title:     title,
				Location:  sess.Location,
				StartTime: sess.StartTime,
				StartedAt: sess.StartedAt,
			})
		}
		out = append(out, group)
	}
	return out, nil
}

func (s *sessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	recording := s.state == StateRecording
	s.mu.Unlock()
	if !recording {
		return
	}
	if _, err := s.Stop(ctx); err != nil {
		s.logger.Warn(sessionModule, "Failed to stop session on shutdown", map[string]interface{}{"error": err.Error()})
	}
}

func (s *sessionService) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.publishState(context.Background(), state, nil)
}

func (s *sessionService) publishState(ctx context.Context, state SessionState, active *activeSession) {
	data := map[string]interface{}{"state": string(state)}
	if active != nil {
		data["session_id"] = active.session.Id
	}
	s.publish(ctx, events.SessionStateChange, data)
}

func (s *sessionService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn(sessionModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

type dayGroup[T any] struct {
	day   string
	items []T
}

// groupByDay buckets already-sorted items by local calendar day, keeping
// their order.
func groupByDay[T any](items []T, at func(T) time.Time) []dayGroup[T] {
	var groups []dayGroup[T]
	index := make(map[string]int)
	for _, item := range items {
		local := at(item).Local()
		key := local.Format(dayKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, dayGroup[T]{day: local.Format(DayGroupLayout)})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}
