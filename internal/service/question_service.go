package service

import (
	"context"
	"strings"
	"time"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/specification"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/pkg/events"
	"ai-memory-capture/pkg/llm"
)

const (
	questionModule = "QuestionAnswer"

	answerSystemPrompt = "You are an assistant answering based only on this transcript:\n"

	AnswerTranscriptTooBrief = "The transcript is too brief to answer that. Please continue recording or ask again later."
	AnswerGenerationFailed   = "An error occurred while generating the answer."
	AnswerNotFound           = "No answer found."
)

// ActiveTranscriptSource exposes the transcript of the session being recorded.
type ActiveTranscriptSource interface {
	ActiveTranscript(sessionId uint) (string, bool)
}

type IQuestionService interface {
	Ask(ctx context.Context, req *dto.AskQuestionRequest) (*dto.QuestionResponse, error)
	// SaveQuestionAnswer stores the pair locally and mirrors it. A nil
	// session stores nothing.
	SaveQuestionAnswer(ctx context.Context, sessionId *uint, question, answer string, at time.Time) (*entity.Question, bool)
	ListBySession(ctx context.Context, sessionId uint) ([]dto.QuestionResponse, error)
	ListAllGroupedByDay(ctx context.Context) ([]dto.QuestionDayGroup, error)
}

type questionService struct {
	uowFactory   unitofwork.RepositoryFactory
	llm          llm.LLMProvider
	active       ActiveTranscriptSource
	cloud        ICloudService
	publisher    IPublisherService
	logger       logger.ILogger
	minWordCount int
	now          func() time.Time
}

func NewQuestionService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	active ActiveTranscriptSource,
	cloud ICloudService,
	publisher IPublisherService,
	log logger.ILogger,
	minWordCount int,
) IQuestionService {
	if minWordCount <= 0 {
		minWordCount = 10
	}
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	return &questionService{
		uowFactory:   uowFactory,
		llm:          provider,
		active:       active,
		cloud:        cloud,
		publisher:    publisher,
		logger:       log,
		minWordCount: minWordCount,
		now:          time.Now,
	}
}

func (s *questionService) Ask(ctx context.Context, req *dto.AskQuestionRequest) (*dto.QuestionResponse, error) {
	question := strings.TrimSpace(req.Question)

	transcript, err := s.transcriptFor(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}

	answer := s.answer(ctx, transcript, question)
	at := s.now()

	stored, saved := s.SaveQuestionAnswer(ctx, req.SessionId, question, answer, at)

	resp := &dto.QuestionResponse{
		Question:  question,
		Answer:    answer,
		Timestamp: at,
		Saved:     saved,
	}
	if req.SessionId != nil {
		resp.SessionId = *req.SessionId
	}
	if stored != nil {
		resp.Id = stored.Id
	}

	if err := s.publisher.Publish(ctx, events.New(events.QuestionAnswered, map[string]interface{}{
		"session_id": resp.SessionId,
		"question":   question,
		"answer":     answer,
	})); err != nil {
		s.logger.Warn(questionModule, "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}

	return resp, nil
}

func (s *questionService) transcriptFor(ctx context.Context, sessionId *uint) (string, error) {
	if sessionId == nil {
		return "", nil
	}
	if s.active != nil {
		if text, ok := s.active.ActiveTranscript(*sessionId); ok {
			return text, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: *sessionId})
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	rows, err := uow.TranscriptRepository().FindAll(ctx, specification.BySessionID{SessionID: *sessionId})
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, " "), nil
}

func (s *questionService) answer(ctx context.Context, transcript, question string) string {
	if len(strings.Fields(transcript)) < s.minWordCount {
		return AnswerTranscriptTooBrief
	}

	out, err := s.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: answerSystemPrompt + transcript},
		{Role: llm.RoleUser, Content: question},
	})
	if err != nil {
		s.logger.Error(questionModule, "Answer generation failed", map[string]interface{}{"error": err.Error()})
		return AnswerGenerationFailed
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return AnswerNotFound
	}
	return out
}

func (s *questionService) SaveQuestionAnswer(ctx context.Context, sessionId *uint, question, answer string, at time.Time) (*entity.Question, bool) {
	if sessionId == nil {
		return nil, false
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record := &entity.Question{
		SessionId: *sessionId,
		Question:  question,
		Answer:    answer,
		Timestamp: at,
	}
	if err := uow.QuestionRepository().Create(ctx, record); err != nil {
		s.logger.Error(questionModule, "Question not saved", map[string]interface{}{
			"session_id": *sessionId,
			"error":      err.Error(),
		})
		return nil, false
	}

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: *sessionId})
	if err != nil {
		s.logger.Warn(questionModule, "Failed to load session for mirroring", map[string]interface{}{
			"session_id": *sessionId,
			"error":      err.Error(),
		})
	}
	if session != nil && session.HasCloudId() {
		s.cloud.AppendQuestionAnswer(*session.CloudId, *record)
	}
	return record, true
}

func (s *questionService) ListBySession(ctx context.Context, sessionId uint) ([]dto.QuestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.QuestionRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuestionResponse, 0, len(rows))
	for _, q := range rows {
		out = append(out, toQuestionResponse(q))
	}
	return out, nil
}

func (s *questionService) ListAllGroupedByDay(ctx context.Context) ([]dto.QuestionDayGroup, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.QuestionRepository().FindAll(ctx,
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	groups := groupByDay(rows, func(q *entity.Question) time.Time { return q.Timestamp })
	out := make([]dto.QuestionDayGroup, 0, len(groups))
	for _, g := range groups {
		group := dto.QuestionDayGroup{Day: g.day, Questions: make([]dto.QuestionResponse, 0, len(g.items))}
		for _, q := range g.items {
			group.Questions = append(group.Questions, toQuestionResponse(q))
		}
		out = append(out, group)
	}
	return out, nil
}

func toQuestionResponse(q *entity.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		Id:        q.Id,
		SessionId: q.SessionId,
		Question:  q.Question,
		Answer:    q.Answer,
		Timestamp: q.Timestamp,
		Saved:     true,
	}
}
