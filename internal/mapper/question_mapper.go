package mapper

import (
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/model"
)

type QuestionMapper struct{}

func NewQuestionMapper() *QuestionMapper {
	return &QuestionMapper{}
}

func (m *QuestionMapper) ToEntity(q *model.Question) *entity.Question {
	if q == nil {
		return nil
	}

	return &entity.Question{
		Id:        q.Id,
		SessionId: q.SessionId,
		Question:  q.Question,
		Answer:    q.Answer,
		Timestamp: q.Timestamp,
	}
}

func (m *QuestionMapper) ToModel(q *entity.Question) *model.Question {
	if q == nil {
		return nil
	}

	return &model.Question{
		Id:        q.Id,
		SessionId: q.SessionId,
		Question:  q.Question,
		Answer:    q.Answer,
		Timestamp: q.Timestamp,
	}
}

func (m *QuestionMapper) ToEntities(questions []*model.Question) []*entity.Question {
	entities := make([]*entity.Question, len(questions))
	for i, q := range questions {
		entities[i] = m.ToEntity(q)
	}
	return entities
}
