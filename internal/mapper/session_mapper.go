package mapper

import (
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	return &entity.Session{
		Id:        s.Id,
		StartTime: s.StartTime,
		StartedAt: s.StartedAt,
		Location:  s.Location,
		CloudId:   s.CloudId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	return &model.Session{
		Id:        s.Id,
		StartTime: s.StartTime,
		StartedAt: s.StartedAt,
		Location:  s.Location,
		CloudId:   s.CloudId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
