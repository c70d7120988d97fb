package unitofwork

import (
	"context"
	"testing"
	"time"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/model"
	"ai-memory-capture/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	factory := NewRepositoryFactory(db)
	ctx := context.Background()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	s := &entity.Session{StartedAt: time.Now(), StartTime: "x"}
	require.NoError(t, uow.SessionRepository().Create(ctx, s))
	require.NoError(t, uow.TranscriptRepository().Create(ctx, &entity.Transcript{SessionId: s.Id, Text: "hi", RecordedAt: time.Now()}))
	require.NoError(t, uow.Rollback())

	count, err := factory.NewUnitOfWork(ctx).SessionRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	uow = factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.SessionRepository().Create(ctx, &entity.Session{StartedAt: time.Now(), StartTime: "x"}))
	require.NoError(t, uow.Commit())

	count, err = factory.NewUnitOfWork(ctx).SessionRepository().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUnitOfWork_CommitWithoutBegin(t *testing.T) {
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	uow := NewUnitOfWork(db)
	assert.Error(t, uow.Commit())
	assert.Error(t, uow.Rollback())
}
