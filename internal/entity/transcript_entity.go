package entity

import "time"

// TranscriptTimeLayout is the clock label stored next to each chunk.
const TranscriptTimeLayout = "15:04"

type Transcript struct {
	Id         uint
	SessionId  uint
	Timestamp  string
	RecordedAt time.Time
	Text       string
}
