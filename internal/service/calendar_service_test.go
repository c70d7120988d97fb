package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/pkg/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCalendar struct {
	events   []calendar.Event
	err      error
	from, to time.Time
}

func (s *stubCalendar) ListEvents(ctx context.Context, accessToken string, from, to time.Time) ([]calendar.Event, error) {
	s.from, s.to = from, to
	return s.events, s.err
}

func TestCalendarService_GroupsByDate(t *testing.T) {
	day := time.Date(2026, 10, 20, 9, 0, 0, 0, time.Local)
	client := &stubCalendar{events: []calendar.Event{
		{Id: "1", Summary: "Standup", Start: day},
		{Id: "2", Summary: "Review", Start: day.Add(5 * time.Hour)},
		{Id: "3", Summary: "Offsite", Start: day.AddDate(0, 0, 2), AllDay: true},
	}}
	svc := NewCalendarService(client, logger.NewNopLogger())

	days, err := svc.UpcomingEvents(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-10-20", days[0].Date)
	assert.Len(t, days[0].Events, 2)
	assert.Equal(t, "2026-10-22", days[1].Date)
	assert.True(t, days[1].Events[0].AllDay)
	assert.Equal(t, client.from.AddDate(0, 1, 0), client.to)
}

func TestCalendarService_Error(t *testing.T) {
	svc := NewCalendarService(&stubCalendar{err: errors.New("unauthorized")}, logger.NewNopLogger())
	_, err := svc.UpcomingEvents(context.Background(), "tok")
	assert.Error(t, err)
}
