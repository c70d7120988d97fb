package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// countingFactory records every unit of work requested.
type countingFactory struct {
	inner unitofwork.RepositoryFactory
	calls atomic.Int32
}

func (f *countingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	f.calls.Add(1)
	return f.inner.NewUnitOfWork(ctx)
}

type activeText map[uint]string

func (a activeText) ActiveTranscript(sessionId uint) (string, bool) {
	text, ok := a[sessionId]
	return text, ok
}

const longTranscript = "we discussed the launch plan and agreed the beta ships to ten customers next week"

func uintPtr(v uint) *uint { return &v }

func TestQuestionService_NilSessionTouchesNoStorage(t *testing.T) {
	factory := &countingFactory{inner: newTestFactory(t)}
	cloud, store := newTestCloud(t)
	svc := NewQuestionService(factory, &mockLLM{}, nil, cloud, nil, logger.NewNopLogger(), 10)

	resp, err := svc.Ask(context.Background(), &dto.AskQuestionRequest{Question: "What happened?"})
	require.NoError(t, err)
	assert.Equal(t, AnswerTranscriptTooBrief, resp.Answer)
	assert.False(t, resp.Saved)
	assert.Zero(t, factory.calls.Load())

	cloud.Close()
	assert.Zero(t, store.Calls("AppendQuestion"))
}

func TestQuestionService_AnswersFromActiveTranscript(t *testing.T) {
	factory := newTestFactory(t)
	cloud, store := newTestCloud(t)
	session := seedSession(t, factory, "cloud-q")

	provider := &mockLLM{}
	provider.On("Chat", mock.Anything, mock.MatchedBy(func(history []llm.Message) bool {
		return strings.HasPrefix(history[0].Content, answerSystemPrompt) &&
			strings.Contains(history[0].Content, longTranscript) &&
			history[1].Content == "Who gets the beta?"
	})).Return("Ten customers.", nil)

	svc := NewQuestionService(factory, provider, activeText{session.Id: longTranscript}, cloud, nil, logger.NewNopLogger(), 10)
	ctx := context.Background()

	resp, err := svc.Ask(ctx, &dto.AskQuestionRequest{SessionId: uintPtr(session.Id), Question: "Who gets the beta?"})
	require.NoError(t, err)
	assert.Equal(t, "Ten customers.", resp.Answer)
	assert.True(t, resp.Saved)
	assert.NotZero(t, resp.Id)

	history, err := svc.ListBySession(ctx, session.Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Who gets the beta?", history[0].Question)

	cloud.Close()
	remote, err := store.ListQuestions(ctx, "cloud-q")
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, "Ten customers.", remote[0].Answer)
}

func TestQuestionService_ReadsStoredTranscript(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "", longTranscript)

	provider := &mockLLM{}
	provider.On("Chat", mock.Anything, mock.Anything).Return("  ", nil)
	svc := NewQuestionService(factory, provider, activeText{}, cloud, nil, logger.NewNopLogger(), 10)

	resp, err := svc.Ask(context.Background(), &dto.AskQuestionRequest{SessionId: uintPtr(session.Id), Question: "Anything else?"})
	require.NoError(t, err)
	assert.Equal(t, AnswerNotFound, resp.Answer)
	assert.True(t, resp.Saved)
}

func TestQuestionService_ModelFailureIsSaved(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "", longTranscript)

	provider := &mockLLM{}
	provider.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	svc := NewQuestionService(factory, provider, nil, cloud, nil, logger.NewNopLogger(), 10)
	ctx := context.Background()

	resp, err := svc.Ask(ctx, &dto.AskQuestionRequest{SessionId: uintPtr(session.Id), Question: "Status?"})
	require.NoError(t, err)
	assert.Equal(t, AnswerGenerationFailed, resp.Answer)

	history, err := svc.ListBySession(ctx, session.Id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestQuestionService_BriefTranscript(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "", "only a few words")
	provider := &mockLLM{}
	svc := NewQuestionService(factory, provider, nil, cloud, nil, logger.NewNopLogger(), 10)

	resp, err := svc.Ask(context.Background(), &dto.AskQuestionRequest{SessionId: uintPtr(session.Id), Question: "Summary?"})
	require.NoError(t, err)
	assert.Equal(t, AnswerTranscriptTooBrief, resp.Answer)
	assert.True(t, resp.Saved)
	provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestQuestionService_UnknownSession(t *testing.T) {
	cloud, _ := newTestCloud(t)
	svc := NewQuestionService(newTestFactory(t), &mockLLM{}, nil, cloud, nil, logger.NewNopLogger(), 10)

	_, err := svc.Ask(context.Background(), &dto.AskQuestionRequest{SessionId: uintPtr(77), Question: "?"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuestionService_GroupedByDayNewestFirst(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "")
	svc := NewQuestionService(factory, &mockLLM{}, nil, cloud, nil, logger.NewNopLogger(), 10)
	ctx := context.Background()

	older := time.Date(2026, 4, 1, 10, 0, 0, 0, time.Local)
	newer := time.Date(2026, 4, 2, 10, 0, 0, 0, time.Local)
	_, saved := svc.SaveQuestionAnswer(ctx, uintPtr(session.Id), "first?", "a", older)
	require.True(t, saved)
	_, saved = svc.SaveQuestionAnswer(ctx, uintPtr(session.Id), "second?", "b", newer)
	require.True(t, saved)
	_, saved = svc.SaveQuestionAnswer(ctx, uintPtr(session.Id), "third?", "c", newer.Add(time.Hour))
	require.True(t, saved)

	groups, err := svc.ListAllGroupedByDay(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, newer.Format(DayGroupLayout), groups[0].Day)
	require.Len(t, groups[0].Questions, 2)
	assert.Equal(t, "third?", groups[0].Questions[0].Question)
	assert.Equal(t, "first?", groups[1].Questions[0].Question)
}
