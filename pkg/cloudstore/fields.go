package cloudstore

import (
	"fmt"
	"time"
)

// Documents written by other clients are loosely typed; these helpers read a
// field without failing the whole document.

func stringField(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func uintField(data map[string]interface{}, key string) uint {
	switch v := data[key].(type) {
	case int64:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

func timeField(data map[string]interface{}, key string) *time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return &v
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
	}
	return nil
}

func sessionFromData(cloudID string, data map[string]interface{}) SessionDoc {
	return SessionDoc{
		CloudID:   cloudID,
		SessionID: uintField(data, "sessionId"),
		Title:     stringField(data, "title"),
		Location:  stringField(data, "location"),
		Timestamp: stringField(data, "timestamp"),
		StartedAt: timeField(data, "startedAt"),
		Summary:   stringField(data, "summary"),
		UpdatedAt: timeField(data, "updatedAt"),
	}
}

func transcriptFromData(data map[string]interface{}) TranscriptDoc {
	return TranscriptDoc{
		Time:       stringField(data, "time"),
		Text:       stringField(data, "text"),
		RecordedAt: timeField(data, "recordedAt"),
	}
}

func questionFromData(data map[string]interface{}) QuestionDoc {
	doc := QuestionDoc{
		Question: stringField(data, "question"),
		Answer:   stringField(data, "answer"),
	}
	if ts := timeField(data, "timestamp"); ts != nil {
		doc.Timestamp = *ts
	} else if created := timeField(data, "createdAt"); created != nil {
		doc.Timestamp = *created
	}
	return doc
}
