package cloudstore

import (
	"context"
	"time"
)

// SessionDoc mirrors one recording session in the cloud. CloudID is the
// document key shared by every device.
type SessionDoc struct {
	CloudID   string
	SessionID uint // local id on the device that created it
	Title     string
	Location  string
	Timestamp string // display start time
	StartedAt *time.Time
	Summary   string
	UpdatedAt *time.Time
}

type TranscriptDoc struct {
	Time       string
	Text       string
	RecordedAt *time.Time
}

type QuestionDoc struct {
	Question  string
	Answer    string
	Timestamp time.Time
}

// Store is the low level cloud document API. Every method reports its error;
// callers decide whether to swallow it.
type Store interface {
	UpsertSession(ctx context.Context, doc SessionDoc) error
	UpdateSessionTitle(ctx context.Context, cloudID, title string) error
	AppendTranscript(ctx context.Context, cloudID string, doc TranscriptDoc) error
	UpdateSummary(ctx context.Context, cloudID, summary, title string) error
	AppendQuestion(ctx context.Context, cloudID string, doc QuestionDoc) error

	ListSessions(ctx context.Context) ([]SessionDoc, error)
	ListTranscripts(ctx context.Context, cloudID string) ([]TranscriptDoc, error)
	GetSummary(ctx context.Context, cloudID string) (string, error)
	ListQuestions(ctx context.Context, cloudID string) ([]QuestionDoc, error)

	Close() error
}
