package service

import "errors"

var (
	ErrSessionActive   = errors.New("a recording session is already active")
	ErrNoActiveSession = errors.New("no active recording session")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoTranscript    = errors.New("no transcript available for session")
	ErrSummaryFailed   = errors.New("summary generation failed")
	ErrCloudDisabled   = errors.New("cloud sync is not configured")
)

// User-facing notices returned alongside a successful state transition.
const (
	NoticeWaitBeforeStopping = "Please wait a moment before stopping"
	NoticeNoTranscript       = "No transcript was captured for this session"
	NoticeSummaryFailed      = "Summary could not be generated. Try again later."
)
