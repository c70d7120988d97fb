package implementation

import (
	"context"
	"errors"

	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/mapper"
	"ai-memory-capture/internal/model"
	"ai-memory-capture/internal/repository/contract"
	"ai-memory-capture/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SummaryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SummaryMapper
}

func NewSummaryRepository(db *gorm.DB) contract.SummaryRepository {
	return &SummaryRepositoryImpl{
		db:     db,
		mapper: mapper.NewSummaryMapper(),
	}
}

func (r *SummaryRepositoryImpl) Upsert(ctx context.Context, summary *entity.Summary) error {
	m := r.mapper.ToModel(summary)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "title"}),
	}).Create(m).Error
}

func (r *SummaryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Summary, error) {
	var m model.Summary
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SummaryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Summary, error) {
	var models []model.Summary
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	summaries := make([]*entity.Summary, 0, len(models))
	for i := range models {
		summaries = append(summaries, r.mapper.ToEntity(&models[i]))
	}
	return summaries, nil
}
