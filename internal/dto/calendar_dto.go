package dto

import "time"

type CalendarEvent struct {
	Id       string     `json:"id"`
	Summary  string     `json:"summary"`
	Location string     `json:"location,omitempty"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	AllDay   bool       `json:"all_day"`
}

type CalendarDay struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Events []CalendarEvent `json:"events"`
}
