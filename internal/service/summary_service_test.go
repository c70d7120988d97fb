package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T, factory unitofwork.RepositoryFactory, cloudId string, texts ...string) *entity.Session {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	session := &entity.Session{StartTime: now.Format(entity.StartTimeLayout), StartedAt: now, Location: LocationUnavailable}
	if cloudId != "" {
		session.CloudId = &cloudId
	}
	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.SessionRepository().Create(ctx, session))
	for _, text := range texts {
		require.NoError(t, uow.TranscriptRepository().Create(ctx, &entity.Transcript{
			SessionId: session.Id, Timestamp: now.Format(entity.TranscriptTimeLayout), RecordedAt: now, Text: text,
		}))
	}
	return session
}

func newSummaryService(factory unitofwork.RepositoryFactory, provider *mockLLM, cloud ICloudService) ISummaryService {
	return NewSummaryService(factory, provider, NewTitleService(provider), cloud, nil, logger.NewNopLogger(),
		SummaryConfig{WaitAttempts: 2, WaitInterval: time.Millisecond})
}

func TestSummaryService_GeneratesOnceThenCaches(t *testing.T) {
	factory := newTestFactory(t)
	cloud, store := newTestCloud(t)
	session := seedSession(t, factory, "cloud-1", "We agreed to ship on Friday.")

	provider := &mockLLM{}
	provider.On("Chat", mock.Anything, systemPrompt(summaryPrompt)).Return("Key points: ship Friday.", nil).Once()
	provider.On("Chat", mock.Anything, systemPrompt(titlePrompt)).Return("Release timing", nil).Once()
	svc := newSummaryService(factory, provider, cloud)
	ctx := context.Background()

	notes, err := svc.GetOrGenerate(ctx, session.Id)
	require.NoError(t, err)
	assert.False(t, notes.Cached)
	assert.Equal(t, "Key points: ship Friday.", notes.Summary)
	assert.Equal(t, "Release timing", notes.Title)

	again, err := svc.GetOrGenerate(ctx, session.Id)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, notes.Summary, again.Summary)
	provider.AssertExpectations(t)

	cloud.Close()
	summary, err := store.GetSummary(ctx, "cloud-1")
	require.NoError(t, err)
	assert.Equal(t, "Key points: ship Friday.", summary)
}

func TestSummaryService_TitleFailureUsesUntitled(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "", "Some notes.")

	provider := &mockLLM{}
	provider.On("Chat", mock.Anything, systemPrompt(summaryPrompt)).Return("", nil)
	provider.On("Chat", mock.Anything, systemPrompt(titlePrompt)).Return("", errors.New("boom"))
	svc := newSummaryService(factory, provider, cloud)

	notes, err := svc.GetOrGenerate(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, SummaryNotAvailable, notes.Summary)
	assert.Equal(t, Untitled, notes.Title)
}

func TestSummaryService_SummaryFailure(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "", "Some notes.")

	provider := &mockLLM{}
	provider.On("Chat", mock.Anything, systemPrompt(summaryPrompt)).Return("", errors.New("rate limited"))
	provider.On("Chat", mock.Anything, systemPrompt(titlePrompt)).Return("Notes", nil)
	svc := newSummaryService(factory, provider, cloud)

	_, err := svc.GetOrGenerate(context.Background(), session.Id)
	assert.ErrorIs(t, err, ErrSummaryFailed)
}

func TestSummaryService_NoTranscript(t *testing.T) {
	factory := newTestFactory(t)
	cloud, _ := newTestCloud(t)
	session := seedSession(t, factory, "")
	provider := &mockLLM{}
	svc := newSummaryService(factory, provider, cloud)

	_, err := svc.GetOrGenerate(context.Background(), session.Id)
	assert.ErrorIs(t, err, ErrNoTranscript)
	provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestSummaryService_UnknownSession(t *testing.T) {
	cloud, _ := newTestCloud(t)
	svc := newSummaryService(newTestFactory(t), &mockLLM{}, cloud)

	_, err := svc.GetOrGenerate(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
