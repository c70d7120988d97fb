package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/pkg/cloudstore"
)

const cloudModule = "CloudMirror"

// ICloudService mirrors local writes to the cloud document store. Writes are
// fire-and-forget: they are queued to a single worker, applied in dispatch
// order, and failures are logged. Reads are synchronous and return empty
// results on failure.
type ICloudService interface {
	Enabled() bool

	CreateSession(session entity.Session)
	AppendTranscriptChunk(cloudId string, transcript entity.Transcript)
	UpsertSummary(cloudId, summary, title string)
	UpdateSessionTitle(cloudId, title string)
	AppendQuestionAnswer(cloudId string, question entity.Question)

	FetchAllSessions(ctx context.Context) []cloudstore.SessionDoc
	FetchTranscripts(ctx context.Context, cloudId string) []cloudstore.TranscriptDoc
	FetchSummary(ctx context.Context, cloudId string) string
	FetchQuestions(ctx context.Context, cloudId string) []cloudstore.QuestionDoc

	// LoadRemoteSession reads a session's children for import. Unlike the
	// Fetch methods it reports read failures so the caller can retry later.
	LoadRemoteSession(ctx context.Context, doc cloudstore.SessionDoc) (*RemoteSession, error)

	// Close waits for queued writes to finish.
	Close()
}

// RemoteSession is a cloud session document together with its children.
type RemoteSession struct {
	Doc         cloudstore.SessionDoc
	Transcripts []cloudstore.TranscriptDoc
	Questions   []cloudstore.QuestionDoc
	Summary     string
}

type mirrorJob struct {
	name    string
	cloudId string
	run     func(ctx context.Context) error
}

type cloudService struct {
	store        cloudstore.Store
	logger       logger.ILogger
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan mirrorJob
	done   chan struct{}
}

// NewCloudService starts the mirror worker. A nil store disables mirroring.
func NewCloudService(store cloudstore.Store, queueSize int, log logger.ILogger) ICloudService {
	if queueSize <= 0 {
		queueSize = 256
	}
	s := &cloudService{
		store:        store,
		logger:       log,
		writeTimeout: 30 * time.Second,
	}
	if store != nil {
		s.queue = make(chan mirrorJob, queueSize)
		s.done = make(chan struct{})
		go s.work()
	}
	return s
}

func (s *cloudService) Enabled() bool {
	return s.store != nil
}

func (s *cloudService) work() {
	defer close(s.done)
	for job := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		err := job.run(ctx)
		cancel()
		if err != nil {
			s.logger.Error(cloudModule, "Cloud write failed", map[string]interface{}{
				"operation": job.name,
				"cloud_id":  job.cloudId,
				"error":     err.Error(),
			})
			continue
		}
		s.logger.Debug(cloudModule, "Cloud write applied", map[string]interface{}{
			"operation": job.name,
			"cloud_id":  job.cloudId,
		})
	}
}

func (s *cloudService) dispatch(job mirrorJob) {
	if s.store == nil || job.cloudId == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn(cloudModule, "Cloud mirror closed, write dropped", map[string]interface{}{
			"operation": job.name,
			"cloud_id":  job.cloudId,
		})
		return
	}

	select {
	case s.queue <- job:
	default:
		s.logger.Error(cloudModule, "Cloud mirror queue full, write dropped", map[string]interface{}{
			"operation": job.name,
			"cloud_id":  job.cloudId,
		})
	}
}

func (s *cloudService) CreateSession(session entity.Session) {
	if !session.HasCloudId() {
		return
	}
	startedAt := session.StartedAt
	doc := cloudstore.SessionDoc{
		CloudID:   *session.CloudId,
		SessionID: session.Id,
		Title:     session.TitleOr(Untitled),
		Location:  session.Location,
		Timestamp: session.StartTime,
		StartedAt: &startedAt,
	}
	s.dispatch(mirrorJob{
		name:    "CreateSession",
		cloudId: doc.CloudID,
		run:     func(ctx context.Context) error { return s.store.UpsertSession(ctx, doc) },
	})
}

func (s *cloudService) AppendTranscriptChunk(cloudId string, transcript entity.Transcript) {
	recordedAt := transcript.RecordedAt
	doc := cloudstore.TranscriptDoc{
		Time:       transcript.Timestamp,
		Text:       transcript.Text,
		RecordedAt: &recordedAt,
	}
	s.dispatch(mirrorJob{
		name:    "AppendTranscript",
		cloudId: cloudId,
		run:     func(ctx context.Context) error { return s.store.AppendTranscript(ctx, cloudId, doc) },
	})
}

func (s *cloudService) UpsertSummary(cloudId, summary, title string) {
	s.dispatch(mirrorJob{
		name:    "UpsertSummary",
		cloudId: cloudId,
		run:     func(ctx context.Context) error { return s.store.UpdateSummary(ctx, cloudId, summary, title) },
	})
}

func (s *cloudService) UpdateSessionTitle(cloudId, title string) {
	s.dispatch(mirrorJob{
		name:    "UpdateSessionTitle",
		cloudId: cloudId,
		run:     func(ctx context.Context) error { return s.store.UpdateSessionTitle(ctx, cloudId, title) },
	})
}

func (s *cloudService) AppendQuestionAnswer(cloudId string, question entity.Question) {
	doc := cloudstore.QuestionDoc{
		Question:  question.Question,
		Answer:    question.Answer,
		Timestamp: question.Timestamp,
	}
	s.dispatch(mirrorJob{
		name:    "AppendQuestion",
		cloudId: cloudId,
		run:     func(ctx context.Context) error { return s.store.AppendQuestion(ctx, cloudId, doc) },
	})
}

func (s *cloudService) FetchAllSessions(ctx context.Context) []cloudstore.SessionDoc {
	if s.store == nil {
		return nil
	}
	docs, err := s.store.ListSessions(ctx)
	if err != nil {
		s.logger.Error(cloudModule, "Failed to fetch cloud sessions", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return docs
}

func (s *cloudService) FetchTranscripts(ctx context.Context, cloudId string) []cloudstore.TranscriptDoc {
	if s.store == nil {
		return nil
	}
	docs, err := s.store.ListTranscripts(ctx, cloudId)
	if err != nil {
		s.logger.Error(cloudModule, "Failed to fetch cloud transcripts", map[string]interface{}{
			"cloud_id": cloudId,
			"error":    err.Error(),
		})
		return nil
	}
	return docs
}

func (s *cloudService) FetchSummary(ctx context.Context, cloudId string) string {
	if s.store == nil {
		return ""
	}
	summary, err := s.store.GetSummary(ctx, cloudId)
	if err != nil {
		s.logger.Error(cloudModule, "Failed to fetch cloud summary", map[string]interface{}{
			"cloud_id": cloudId,
			"error":    err.Error(),
		})
		return ""
	}
	return summary
}

func (s *cloudService) FetchQuestions(ctx context.Context, cloudId string) []cloudstore.QuestionDoc {
	if s.store == nil {
		return nil
	}
	docs, err := s.store.ListQuestions(ctx, cloudId)
	if err != nil {
		s.logger.Error(cloudModule, "Failed to fetch cloud questions", map[string]interface{}{
			"cloud_id": cloudId,
			"error":    err.Error(),
		})
		return nil
	}
	return docs
}

func (s *cloudService) Close() {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
}

func (s *cloudService) LoadRemoteSession(ctx context.Context, doc cloudstore.SessionDoc) (*RemoteSession, error) {
	if s.store == nil {
		return nil, ErrCloudDisabled
	}

	transcripts, err := s.store.ListTranscripts(ctx, doc.CloudID)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcripts: %w", err)
	}
	questions, err := s.store.ListQuestions(ctx, doc.CloudID)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	summary := doc.Summary
	if summary == "" {
		if summary, err = s.store.GetSummary(ctx, doc.CloudID); err != nil {
			return nil, fmt.Errorf("failed to read summary: %w", err)
		}
	}

	return &RemoteSession{
		Doc:         doc,
		Transcripts: transcripts,
		Questions:   questions,
		Summary:     summary,
	}, nil
}
