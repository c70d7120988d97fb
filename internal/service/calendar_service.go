package service

import (
	"context"
	"time"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/pkg/calendar"
)

const (
	calendarModule  = "Calendar"
	calendarDateKey = "2006-01-02"
)

type ICalendarService interface {
	// UpcomingEvents lists the next month of events grouped by date.
	UpcomingEvents(ctx context.Context, accessToken string) ([]dto.CalendarDay, error)
}

type calendarService struct {
	client calendar.Client
	logger logger.ILogger
	now    func() time.Time
}

func NewCalendarService(client calendar.Client, log logger.ILogger) ICalendarService {
	return &calendarService{client: client, logger: log, now: time.Now}
}

func (s *calendarService) UpcomingEvents(ctx context.Context, accessToken string) ([]dto.CalendarDay, error) {
	from := s.now()
	to := from.AddDate(0, 1, 0)

	items, err := s.client.ListEvents(ctx, accessToken, from, to)
	if err != nil {
		s.logger.Error(calendarModule, "Failed to list calendar events", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	days := make([]dto.CalendarDay, 0)
	index := make(map[string]int)
	for _, item := range items {
		key := item.Start.Local().Format(calendarDateKey)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, dto.CalendarDay{Date: key})
		}
		days[i].Events = append(days[i].Events, dto.CalendarEvent{
			Id:       item.Id,
			Summary:  item.Summary,
			Location: item.Location,
			Start:    item.Start,
			End:      item.End,
			AllDay:   item.AllDay,
		})
	}
	return days, nil
}
