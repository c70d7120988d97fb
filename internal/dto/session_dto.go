package dto

import "time"

type StartSessionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type TranscriptLine struct {
	Id         uint      `json:"id,omitempty"`
	Timestamp  string    `json:"timestamp"`
	RecordedAt time.Time `json:"recorded_at"`
	Text       string    `json:"text"`
}

// SessionStateResponse is the live view of the recording pipeline.
type SessionStateResponse struct {
	State          string           `json:"state"`
	SessionId      uint             `json:"session_id,omitempty"`
	CloudId        string           `json:"cloud_id,omitempty"`
	Title          string           `json:"title,omitempty"`
	Location       string           `json:"location,omitempty"`
	StartTime      string           `json:"start_time,omitempty"`
	StartedAt      *time.Time       `json:"started_at,omitempty"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
	Capturing      bool             `json:"capturing"`
	Notice         string           `json:"notice,omitempty"`
	Transcripts    []TranscriptLine `json:"transcripts"`
}

type SessionDetailResponse struct {
	Id          uint             `json:"id"`
	CloudId     string           `json:"cloud_id,omitempty"`
	Title       string           `json:"title"`
	Location    string           `json:"location"`
	StartTime   string           `json:"start_time"`
	StartedAt   time.Time        `json:"started_at"`
	Transcripts []TranscriptLine `json:"transcripts"`
}

type SessionListItem struct {
	Id        uint      `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartTime string    `json:"start_time"`
	StartedAt time.Time `json:"started_at"`
}

type SessionDayGroup struct {
	Day      string            `json:"day"`
	Sessions []SessionListItem `json:"sessions"`
}

type SessionNotesResponse struct {
	SessionId uint   `json:"session_id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Cached    bool   `json:"cached"`
}
