package cloudstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps documents in process. It backs local development without
// a Firestore project and the service tests.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*SessionDoc
	order       []string
	transcripts map[string][]TranscriptDoc
	questions   map[string][]QuestionDoc
	failures    map[string]error
	calls       map[string]int
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*SessionDoc),
		transcripts: make(map[string][]TranscriptDoc),
		questions:   make(map[string][]QuestionDoc),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
	}
}

// FailOn makes the named method ("UpsertSession", "ListTranscripts", ...)
// return err until cleared with a nil err.
func (m *MemoryStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

func (m *MemoryStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MemoryStore) enter(method string) error {
	m.calls[method]++
	return m.failures[method]
}

func (m *MemoryStore) UpsertSession(ctx context.Context, doc SessionDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpsertSession"); err != nil {
		return err
	}

	existing, ok := m.sessions[doc.CloudID]
	if !ok {
		d := doc
		m.sessions[doc.CloudID] = &d
		m.order = append(m.order, doc.CloudID)
		return nil
	}
	existing.SessionID = doc.SessionID
	existing.Title = doc.Title
	existing.Location = doc.Location
	existing.Timestamp = doc.Timestamp
	if doc.StartedAt != nil {
		existing.StartedAt = doc.StartedAt
	}
	if doc.Summary != "" {
		existing.Summary = doc.Summary
	}
	return nil
}

func (m *MemoryStore) UpdateSessionTitle(ctx context.Context, cloudID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateSessionTitle"); err != nil {
		return err
	}
	doc, ok := m.sessions[cloudID]
	if !ok {
		return fmt.Errorf("session %s not found", cloudID)
	}
	now := time.Now()
	doc.Title = title
	doc.UpdatedAt = &now
	return nil
}

func (m *MemoryStore) AppendTranscript(ctx context.Context, cloudID string, doc TranscriptDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AppendTranscript"); err != nil {
		return err
	}
	m.transcripts[cloudID] = append(m.transcripts[cloudID], doc)
	return nil
}

func (m *MemoryStore) UpdateSummary(ctx context.Context, cloudID, summary, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateSummary"); err != nil {
		return err
	}
	doc, ok := m.sessions[cloudID]
	if !ok {
		doc = &SessionDoc{CloudID: cloudID}
		m.sessions[cloudID] = doc
		m.order = append(m.order, cloudID)
	}
	now := time.Now()
	doc.Summary = summary
	doc.Title = title
	doc.UpdatedAt = &now
	return nil
}

func (m *MemoryStore) AppendQuestion(ctx context.Context, cloudID string, doc QuestionDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AppendQuestion"); err != nil {
		return err
	}
	m.questions[cloudID] = append(m.questions[cloudID], doc)
	return nil
}

func (m *MemoryStore) ListSessions(ctx context.Context) ([]SessionDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListSessions"); err != nil {
		return nil, err
	}
	docs := make([]SessionDoc, 0, len(m.order))
	for _, id := range m.order {
		docs = append(docs, *m.sessions[id])
	}
	return docs, nil
}

func (m *MemoryStore) ListTranscripts(ctx context.Context, cloudID string) ([]TranscriptDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListTranscripts"); err != nil {
		return nil, err
	}
	return append([]TranscriptDoc(nil), m.transcripts[cloudID]...), nil
}

func (m *MemoryStore) GetSummary(ctx context.Context, cloudID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetSummary"); err != nil {
		return "", err
	}
	if doc, ok := m.sessions[cloudID]; ok {
		return doc.Summary, nil
	}
	return "", nil
}

func (m *MemoryStore) ListQuestions(ctx context.Context, cloudID string) ([]QuestionDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListQuestions"); err != nil {
		return nil, err
	}
	return append([]QuestionDoc(nil), m.questions[cloudID]...), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
