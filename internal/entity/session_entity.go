package entity

import "time"

// StartTimeLayout renders the human-readable session start.
const StartTimeLayout = "Jan 2, 2006 • 3:04 PM"

type Session struct {
	Id        uint
	StartTime string
	StartedAt time.Time
	Location  string
	CloudId   *string
	Title     *string
	CreatedAt time.Time
}

func (s *Session) HasCloudId() bool {
	return s.CloudId != nil && *s.CloudId != ""
}

func (s *Session) TitleOr(fallback string) string {
	if s.Title != nil && *s.Title != "" {
		return *s.Title
	}
	return fallback
}
