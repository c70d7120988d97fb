package contract

import (
	"context"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/repository/specification"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
