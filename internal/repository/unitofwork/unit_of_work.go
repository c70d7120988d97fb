package unitofwork

import (
	"context"

	"ai-memory-capture/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	TranscriptRepository() contract.TranscriptRepository
	QuestionRepository() contract.QuestionRepository
	SummaryRepository() contract.SummaryRepository
}
