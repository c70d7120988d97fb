package service

import (
	"context"
	"fmt"
	"time"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/specification"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/pkg/cloudstore"
	"ai-memory-capture/pkg/events"

	"golang.org/x/sync/singleflight"
)

const syncModule = "CloudSync"

type ISyncService interface {
	// SyncFromCloud imports every remote session that has no local row with
	// the same cloud id. Running it twice imports nothing the second time.
	SyncFromCloud(ctx context.Context) (*dto.SyncReportResponse, error)
}

type syncService struct {
	uowFactory unitofwork.RepositoryFactory
	cloud      ICloudService
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
	group      singleflight.Group
}

func NewSyncService(uowFactory unitofwork.RepositoryFactory, cloud ICloudService, publisher IPublisherService, log logger.ILogger) ISyncService {
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	return &syncService{
		uowFactory: uowFactory,
		cloud:      cloud,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

func (s *syncService) SyncFromCloud(ctx context.Context) (*dto.SyncReportResponse, error) {
	if !s.cloud.Enabled() {
		return nil, ErrCloudDisabled
	}

	// Concurrent callers share one pass.
	v, err, _ := s.group.Do("sync", func() (interface{}, error) {
		return s.sync(ctx), nil
	})
	if err != nil {
		return nil, err
	}
	report := *v.(*dto.SyncReportResponse)
	return &report, nil
}

func (s *syncService) sync(ctx context.Context) *dto.SyncReportResponse {
	remote := s.cloud.FetchAllSessions(ctx)
	report := &dto.SyncReportResponse{Remote: len(remote)}

	for _, doc := range remote {
		if doc.CloudID == "" {
			report.Skipped++
			continue
		}

		uow := s.uowFactory.NewUnitOfWork(ctx)
		existing, err := uow.SessionRepository().FindOne(ctx, specification.ByCloudID{CloudID: doc.CloudID})
		if err != nil {
			report.Failed++
			s.logger.Error(syncModule, "Failed to look up session", map[string]interface{}{
				"cloud_id": doc.CloudID,
				"error":    err.Error(),
			})
			continue
		}
		if existing != nil {
			report.Skipped++
			continue
		}

		id, err := s.importSession(ctx, doc)
		if err != nil {
			report.Failed++
			s.logger.Error(syncModule, "Failed to import session", map[string]interface{}{
				"cloud_id": doc.CloudID,
				"error":    err.Error(),
			})
			continue
		}
		report.Imported++

		if err := s.publisher.Publish(ctx, events.New(events.SessionSynced, map[string]interface{}{
			"session_id": id,
			"cloud_id":   doc.CloudID,
		})); err != nil {
			s.logger.Warn(syncModule, "Failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info(syncModule, "Sync finished", map[string]interface{}{
		"remote":   report.Remote,
		"imported": report.Imported,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	})
	return report
}

// importSession writes one remote session with its children in a single
// transaction. A failed child read imports nothing, so the next pass retries.
func (s *syncService) importSession(ctx context.Context, doc cloudstore.SessionDoc) (uint, error) {
	remote, err := s.cloud.LoadRemoteSession(ctx, doc)
	if err != nil {
		return 0, err
	}
	transcripts, questions, summary := remote.Transcripts, remote.Questions, remote.Summary

	startedAt := s.canonicalStart(doc)
	cloudId := doc.CloudID
	session := entity.Session{
		StartTime: doc.Timestamp,
		StartedAt: startedAt,
		Location:  doc.Location,
		CloudId:   &cloudId,
	}
	if session.StartTime == "" {
		session.StartTime = startedAt.Format(entity.StartTimeLayout)
	}
	if doc.Title != "" {
		title := doc.Title
		session.Title = &title
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback()
		}
	}()

	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}

	for _, t := range transcripts {
		recordedAt := startedAt
		if t.RecordedAt != nil {
			recordedAt = *t.RecordedAt
		}
		row := entity.Transcript{
			SessionId:  session.Id,
			Timestamp:  t.Time,
			RecordedAt: recordedAt,
			Text:       t.Text,
		}
		if err := uow.TranscriptRepository().Create(ctx, &row); err != nil {
			return 0, fmt.Errorf("failed to insert transcript: %w", err)
		}
	}

	if summary != "" {
		title := doc.Title
		if title == "" {
			title = Untitled
		}
		if err := uow.SummaryRepository().Upsert(ctx, &entity.Summary{
			SessionId: session.Id,
			Summary:   summary,
			Title:     title,
		}); err != nil {
			return 0, fmt.Errorf("failed to upsert summary: %w", err)
		}
	}

	for _, q := range questions {
		ts := q.Timestamp
		if ts.IsZero() {
			ts = startedAt
		}
		row := entity.Question{
			SessionId: session.Id,
			Question:  q.Question,
			Answer:    q.Answer,
			Timestamp: ts,
		}
		if err := uow.QuestionRepository().Create(ctx, &row); err != nil {
			return 0, fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return session.Id, nil
}

// canonicalStart prefers the remote canonical timestamp, then the display
// string, then now.
func (s *syncService) canonicalStart(doc cloudstore.SessionDoc) time.Time {
	if doc.StartedAt != nil && !doc.StartedAt.IsZero() {
		return *doc.StartedAt
	}
	if doc.Timestamp != "" {
		if t, err := time.ParseInLocation(entity.StartTimeLayout, doc.Timestamp, time.Local); err == nil {
			return t
		}
	}
	return s.now()
}
