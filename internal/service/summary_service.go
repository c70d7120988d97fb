package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/specification"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/internal/tracer"
	"ai-memory-capture/pkg/events"
	"ai-memory-capture/pkg/llm"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	summaryModule       = "Summary"
	summaryPrompt       = "Summarize the following meeting transcript in a structured format with key points, actions, and decisions:"
	SummaryNotAvailable = "Summary not available."
)

type SummaryConfig struct {
	WaitAttempts int
	WaitInterval time.Duration
}

type ISummaryService interface {
	// GetOrGenerate returns the stored notes for a session, generating and
	// storing them on first request.
	GetOrGenerate(ctx context.Context, sessionId uint) (*dto.SessionNotesResponse, error)
}

type summaryService struct {
	uowFactory unitofwork.RepositoryFactory
	llm        llm.LLMProvider
	titles     ITitleService
	cloud      ICloudService
	publisher  IPublisherService
	logger     logger.ILogger
	cfg        SummaryConfig
	group      singleflight.Group
}

func NewSummaryService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	titles ITitleService,
	cloud ICloudService,
	publisher IPublisherService,
	log logger.ILogger,
	cfg SummaryConfig,
) ISummaryService {
	if cfg.WaitAttempts <= 0 {
		cfg.WaitAttempts = 5
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = time.Second
	}
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	return &summaryService{
		uowFactory: uowFactory,
		llm:        provider,
		titles:     titles,
		cloud:      cloud,
		publisher:  publisher,
		logger:     log,
		cfg:        cfg,
	}
}

func (s *summaryService) GetOrGenerate(ctx context.Context, sessionId uint) (*dto.SessionNotesResponse, error) {
	v, err, _ := s.group.Do(strconv.FormatUint(uint64(sessionId), 10), func() (interface{}, error) {
		return s.getOrGenerate(ctx, sessionId)
	})
	if err != nil {
		return nil, err
	}
	notes := *v.(*dto.SessionNotesResponse)
	return &notes, nil
}

func (s *summaryService) getOrGenerate(ctx context.Context, sessionId uint) (*dto.SessionNotesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	cached, err := uow.SummaryRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return &dto.SessionNotesResponse{
			SessionId: sessionId,
			Title:     orDefault(cached.Title, session.TitleOr(Untitled)),
			Summary:   orDefault(cached.Summary, SummaryNotAvailable),
			Cached:    true,
		}, nil
	}

	transcript, err := s.waitForTranscript(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	var summary, title string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.summarize(gctx, transcript)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSummaryFailed, err)
		}
		summary = strings.TrimSpace(out)
		return nil
	})
	g.Go(func() error {
		generated, err := s.titles.Generate(gctx, transcript)
		if err != nil {
			s.logger.Warn(summaryModule, "Title generation failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			return nil
		}
		title = generated
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error(summaryModule, "Summary generation failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	record := &entity.Summary{
		SessionId: sessionId,
		Summary:   orDefault(summary, SummaryNotAvailable),
		Title:     orDefault(title, Untitled),
	}
	if err := uow.SummaryRepository().Upsert(ctx, record); err != nil {
		s.logger.Error(summaryModule, "Failed to save summary", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, err
	}
	if session.HasCloudId() {
		s.cloud.UpsertSummary(*session.CloudId, record.Summary, record.Title)
	}

	if err := s.publisher.Publish(ctx, events.New(events.SummaryGenerated, map[string]interface{}{
		"session_id": sessionId,
		"title":      record.Title,
	})); err != nil {
		s.logger.Warn(summaryModule, "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}

	return &dto.SessionNotesResponse{
		SessionId: sessionId,
		Title:     record.Title,
		Summary:   record.Summary,
	}, nil
}

// waitForTranscript polls the Local Store so chunks still being transcribed
// for a just-stopped session are included.
func (s *summaryService) waitForTranscript(ctx context.Context, sessionId uint) (string, error) {
	text, err := backoff.Retry(ctx, func() (string, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		rows, err := uow.TranscriptRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
		if err != nil {
			return "", backoff.Permanent(err)
		}
		parts := make([]string, 0, len(rows))
		for _, r := range rows {
			parts = append(parts, r.Text)
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			return "", ErrNoTranscript
		}
		return text, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.WaitInterval)),
		backoff.WithMaxTries(uint(s.cfg.WaitAttempts)),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *summaryService) summarize(ctx context.Context, transcript string) (string, error) {
	ctx, span := tracer.Tracer("summary").Start(ctx, "GenerateSummary")
	defer span.End()

	return s.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: summaryPrompt},
		{Role: llm.RoleUser, Content: transcript},
	})
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
