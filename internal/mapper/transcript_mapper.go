package mapper

import (
	"ai-memory-capture/internal/entity"
	"ai-memory-capture/internal/model"
)

type TranscriptMapper struct{}

func NewTranscriptMapper() *TranscriptMapper {
	return &TranscriptMapper{}
}

func (m *TranscriptMapper) ToEntity(t *model.Transcript) *entity.Transcript {
	if t == nil {
		return nil
	}

	return &entity.Transcript{
		Id:         t.Id,
		SessionId:  t.SessionId,
		Timestamp:  t.Timestamp,
		RecordedAt: t.RecordedAt,
		Text:       t.Text,
	}
}

func (m *TranscriptMapper) ToModel(t *entity.Transcript) *model.Transcript {
	if t == nil {
		return nil
	}

	return &model.Transcript{
		Id:         t.Id,
		SessionId:  t.SessionId,
		Timestamp:  t.Timestamp,
		RecordedAt: t.RecordedAt,
		Text:       t.Text,
	}
}

func (m *TranscriptMapper) ToEntities(transcripts []*model.Transcript) []*entity.Transcript {
	entities := make([]*entity.Transcript, len(transcripts))
	for i, t := range transcripts {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
