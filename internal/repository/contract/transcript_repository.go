package contract

import (
	"context"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/repository/specification"
)

type TranscriptRepository interface {
	Create(ctx context.Context, transcript *entity.Transcript) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transcript, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
