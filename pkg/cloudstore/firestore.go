package cloudstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

const (
	transcriptsCollection = "transcripts"
	questionsCollection   = "questions"
)

type FirestoreStore struct {
	client   *firestore.Client
	sessions string
}

var _ Store = &FirestoreStore{}

// NewFirestoreStore connects to Firestore. FIRESTORE_EMULATOR_HOST is honored
// by the client library.
func NewFirestoreStore(ctx context.Context, projectID, sessionsCollection, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	if sessionsCollection == "" {
		sessionsCollection = "sessions"
	}
	return &FirestoreStore{client: client, sessions: sessionsCollection}, nil
}

func (s *FirestoreStore) sessionRef(cloudID string) *firestore.DocumentRef {
	return s.client.Collection(s.sessions).Doc(cloudID)
}

func (s *FirestoreStore) UpsertSession(ctx context.Context, doc SessionDoc) error {
	data := map[string]interface{}{
		"sessionId": int64(doc.SessionID),
		"title":     doc.Title,
		"location":  doc.Location,
		"timestamp": doc.Timestamp,
	}
	if doc.StartedAt != nil {
		data["startedAt"] = *doc.StartedAt
	}
	if doc.Summary != "" {
		data["summary"] = doc.Summary
	}

	if _, err := s.sessionRef(doc.CloudID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("upsert session %s: %w", doc.CloudID, err)
	}
	return nil
}

func (s *FirestoreStore) UpdateSessionTitle(ctx context.Context, cloudID, title string) error {
	_, err := s.sessionRef(cloudID).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("update title of %s: %w", cloudID, err)
	}
	return nil
}

func (s *FirestoreStore) AppendTranscript(ctx context.Context, cloudID string, doc TranscriptDoc) error {
	data := map[string]interface{}{
		"time":      doc.Time,
		"text":      doc.Text,
		"createdAt": firestore.ServerTimestamp,
	}
	if doc.RecordedAt != nil {
		data["recordedAt"] = *doc.RecordedAt
	}

	if _, _, err := s.sessionRef(cloudID).Collection(transcriptsCollection).Add(ctx, data); err != nil {
		return fmt.Errorf("append transcript to %s: %w", cloudID, err)
	}
	return nil
}

func (s *FirestoreStore) UpdateSummary(ctx context.Context, cloudID, summary, title string) error {
	data := map[string]interface{}{
		"summary":   summary,
		"title":     title,
		"updatedAt": firestore.ServerTimestamp,
	}
	if _, err := s.sessionRef(cloudID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("update summary of %s: %w", cloudID, err)
	}
	return nil
}

// AppendQuestion stores the timestamp as an RFC 3339 string, the format
// older clients wrote.
func (s *FirestoreStore) AppendQuestion(ctx context.Context, cloudID string, doc QuestionDoc) error {
	data := map[string]interface{}{
		"question":  doc.Question,
		"answer":    doc.Answer,
		"timestamp": doc.Timestamp.UTC().Format(time.RFC3339Nano),
		"createdAt": firestore.ServerTimestamp,
	}
	if _, _, err := s.sessionRef(cloudID).Collection(questionsCollection).Add(ctx, data); err != nil {
		return fmt.Errorf("append question to %s: %w", cloudID, err)
	}
	return nil
}

func (s *FirestoreStore) ListSessions(ctx context.Context) ([]SessionDoc, error) {
	snaps, err := s.client.Collection(s.sessions).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	docs := make([]SessionDoc, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, sessionFromData(snap.Ref.ID, snap.Data()))
	}
	return docs, nil
}

func (s *FirestoreStore) ListTranscripts(ctx context.Context, cloudID string) ([]TranscriptDoc, error) {
	snaps, err := s.sessionRef(cloudID).Collection(transcriptsCollection).
		OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list transcripts of %s: %w", cloudID, err)
	}

	docs := make([]TranscriptDoc, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, transcriptFromData(snap.Data()))
	}
	return docs, nil
}

func (s *FirestoreStore) GetSummary(ctx context.Context, cloudID string) (string, error) {
	snap, err := s.sessionRef(cloudID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get summary of %s: %w", cloudID, err)
	}
	return stringField(snap.Data(), "summary"), nil
}

func (s *FirestoreStore) ListQuestions(ctx context.Context, cloudID string) ([]QuestionDoc, error) {
	snaps, err := s.sessionRef(cloudID).Collection(questionsCollection).
		OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list questions of %s: %w", cloudID, err)
	}

	docs := make([]QuestionDoc, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, questionFromData(snap.Data()))
	}
	return docs, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
