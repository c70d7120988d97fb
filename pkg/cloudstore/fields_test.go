package cloudstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromData(t *testing.T) {
	started := time.Date(2025, 5, 4, 13, 0, 0, 0, time.UTC)
	doc := sessionFromData("abc", map[string]interface{}{
		"sessionId": int64(7),
		"title":     "Standup",
		"location":  "Austin, TX",
		"timestamp": "May 4, 2025 • 1:00 PM",
		"startedAt": started,
	})

	assert.Equal(t, "abc", doc.CloudID)
	assert.EqualValues(t, 7, doc.SessionID)
	assert.Equal(t, "Standup", doc.Title)
	require.NotNil(t, doc.StartedAt)
	assert.True(t, doc.StartedAt.Equal(started))
	assert.Empty(t, doc.Summary)
	assert.Nil(t, doc.UpdatedAt)
}

func TestQuestionFromDataParsesLegacyStrings(t *testing.T) {
	doc := questionFromData(map[string]interface{}{
		"question":  "What was decided?",
		"answer":    "Ship Friday",
		"timestamp": "2025-05-04T13:05:00.000Z",
	})
	assert.Equal(t, "Ship Friday", doc.Answer)
	assert.Equal(t, 2025, doc.Timestamp.Year())
	assert.Equal(t, 5, doc.Timestamp.Minute())
}

func TestQuestionFromDataFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := questionFromData(map[string]interface{}{
		"question":  "q",
		"timestamp": "not a time",
		"createdAt": created,
	})
	assert.True(t, doc.Timestamp.Equal(created))
}

func TestLooseFields(t *testing.T) {
	data := map[string]interface{}{"n": float64(3), "neg": int64(-1), "s": 12}
	assert.EqualValues(t, 3, uintField(data, "n"))
	assert.Zero(t, uintField(data, "neg"))
	assert.Equal(t, "12", stringField(data, "s"))
	assert.Equal(t, "", stringField(data, "missing"))
	assert.Nil(t, timeField(data, "missing"))
}
