package mapper

import (
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/model"
)

type SummaryMapper struct{}

func NewSummaryMapper() *SummaryMapper {
	return &SummaryMapper{}
}

func (m *SummaryMapper) ToEntity(s *model.Summary) *entity.Summary {
	if s == nil {
		return nil
	}
	return &entity.Summary{
		SessionId: s.SessionId,
		Summary:   s.Summary,
		Title:     s.Title,
	}
}

func (m *SummaryMapper) ToModel(s *entity.Summary) *model.Summary {
	if s == nil {
		return nil
	}
	return &model.Summary{
		SessionId: s.SessionId,
		Summary:   s.Summary,
		Title:     s.Title,
	}
}
