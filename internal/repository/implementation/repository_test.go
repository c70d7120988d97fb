package implementation

import (
	"context"
	"testing"
	"time"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/model"
	"ai-memory-capture/internal/repository/specification"
	"ai-memory-capture/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func strPtr(s string) *string { return &s }

func TestSessionRepository_CreateAndFindByCloudID(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	started := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	s := &entity.Session{
		StartTime: started.Format(entity.StartTimeLayout),
		StartedAt: started,
		Location:  "Austin, TX",
		CloudId:   strPtr("cloud-1"),
	}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.Id)

	found, err := repo.FindOne(ctx, specification.ByCloudID{CloudID: "cloud-1"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, s.Id, found.Id)
	assert.Nil(t, found.Title)

	missing, err := repo.FindOne(ctx, specification.ByCloudID{CloudID: "cloud-2"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository_CloudIDIsUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &entity.Session{StartedAt: now, StartTime: "x", CloudId: strPtr("dup")}))
	err := repo.Create(ctx, &entity.Session{StartedAt: now, StartTime: "x", CloudId: strPtr("dup")})
	assert.Error(t, err)

	// sessions without a cloud id do not collide
	require.NoError(t, repo.Create(ctx, &entity.Session{StartedAt: now, StartTime: "x"}))
	require.NoError(t, repo.Create(ctx, &entity.Session{StartedAt: now, StartTime: "x"}))
}

func TestSessionRepository_UpdateTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	s := &entity.Session{StartedAt: time.Now(), StartTime: "x"}
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, repo.UpdateTitle(ctx, s.Id, "Quarterly planning"))

	found, err := repo.FindOne(ctx, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly planning", found.TitleOr(""))

	assert.ErrorIs(t, repo.UpdateTitle(ctx, 9999, "nope"), gorm.ErrRecordNotFound)
}

func TestTranscriptRepository_InsertionOrder(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionRepository(db)
	repo := NewTranscriptRepository(db)
	ctx := context.Background()

	s := &entity.Session{StartedAt: time.Now(), StartTime: "x"}
	require.NoError(t, sessions.Create(ctx, s))

	base := time.Now()
	for i, text := range []string{"one", "two", "three"} {
		// recorded_at deliberately out of order; id order wins
		tr := &entity.Transcript{SessionId: s.Id, Text: text, RecordedAt: base.Add(-time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, tr))
	}

	rows, err := repo.FindAll(ctx, specification.BySessionID{SessionID: s.Id})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "one", rows[0].Text)
	assert.Equal(t, "two", rows[1].Text)
	assert.Equal(t, "three", rows[2].Text)

	count, err := repo.Count(ctx, specification.BySessionID{SessionID: s.Id})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestSummaryRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionRepository(db)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	s := &entity.Session{StartedAt: time.Now(), StartTime: "x"}
	require.NoError(t, sessions.Create(ctx, s))

	require.NoError(t, repo.Upsert(ctx, &entity.Summary{SessionId: s.Id, Summary: "first", Title: "A"}))
	require.NoError(t, repo.Upsert(ctx, &entity.Summary{SessionId: s.Id, Summary: "second", Title: "B"}))

	found, err := repo.FindOne(ctx, specification.BySessionID{SessionID: s.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "second", found.Summary)
	assert.Equal(t, "B", found.Title)

	var count int64
	require.NoError(t, db.Model(&model.Summary{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestQuestionRepository_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionRepository(db)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	s := &entity.Session{StartedAt: time.Now(), StartTime: "x"}
	require.NoError(t, sessions.Create(ctx, s))

	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &entity.Question{SessionId: s.Id, Question: "q1", Answer: "a1", Timestamp: t0}))
	require.NoError(t, repo.Create(ctx, &entity.Question{SessionId: s.Id, Question: "q2", Answer: "a2", Timestamp: t0.Add(time.Hour)}))

	rows, err := repo.FindAll(ctx,
		specification.BySessionID{SessionID: s.Id},
		specification.OrderBy{Field: "timestamp", Desc: true},
	)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "q2", rows[0].Question)
	assert.True(t, rows[1].Timestamp.Equal(t0))
}
