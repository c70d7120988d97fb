package contract

import (
	"context"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/repository/specification"
)

type SummaryRepository interface {
	// Upsert inserts or replaces the summary keyed by session id.
	Upsert(ctx context.Context, summary *entity.Summary) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Summary, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Summary, error)
}
