package events

import "time"

const (
	SessionStarted     = "SESSION_STARTED"
	SessionStateChange = "SESSION_STATE_CHANGED"
	TranscriptAppended = "TRANSCRIPT_APPENDED"
	SessionFinalized   = "SESSION_FINALIZED"
	SessionSynced      = "SESSION_SYNCED"
	SummaryGenerated   = "SUMMARY_GENERATED"
	QuestionAnswered   = "QUESTION_ANSWERED"
	RecordingTick      = "RECORDING_TICK"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope is the JSON form an event takes on the in-process bus, the NATS
// stream and the live websocket feed.
type Envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}

func (e Envelope) Event() BaseEvent {
	return BaseEvent{Type: e.Type, Data: e.Data, OccurredAt: e.OccurredAt}
}
