package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	evt := New(TranscriptAppended, map[string]interface{}{"session_id": float64(3), "text": "hi"})

	raw, err := json.Marshal(ToEnvelope(evt))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	back := env.Event()

	assert.Equal(t, TranscriptAppended, back.EventType())
	assert.Equal(t, "hi", back.Payload()["text"])
	assert.True(t, back.Timestamp().Equal(evt.Timestamp()))
}
