package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	primaryCalendar = "primary"
	maxResults      = 50
	dateLayout      = "2006-01-02"
)

var ErrMissingToken = errors.New("calendar access token is required")

type Event struct {
	Id       string
	Summary  string
	Location string
	Start    time.Time
	End      *time.Time
	AllDay   bool
}

// Client lists events from the user's primary Google calendar.
type Client interface {
	ListEvents(ctx context.Context, accessToken string, from, to time.Time) ([]Event, error)
}

type googleClient struct {
	opts []option.ClientOption
}

// NewGoogleClient builds a client; extra options (endpoint, http client) are
// appended to the per-call token source.
func NewGoogleClient(opts ...option.ClientOption) Client {
	return &googleClient{opts: opts}
}

func (c *googleClient) ListEvents(ctx context.Context, accessToken string, from, to time.Time) ([]Event, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...)

	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	resp, err := srv.Events.List(primaryCalendar).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, ok := toEvent(item)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func toEvent(item *gcal.Event) (Event, bool) {
	if item == nil || item.Start == nil {
		return Event{}, false
	}
	start, allDay, ok := parseEventTime(item.Start)
	if !ok {
		return Event{}, false
	}
	ev := Event{
		Id:       item.Id,
		Summary:  item.Summary,
		Location: item.Location,
		Start:    start,
		AllDay:   allDay,
	}
	if item.End != nil {
		if end, _, ok := parseEventTime(item.End); ok {
			ev.End = &end
		}
	}
	return ev, true
}

// parseEventTime reads either a dateTime or an all-day date.
func parseEventTime(dt *gcal.EventDateTime) (time.Time, bool, bool) {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, false, err == nil
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(dateLayout, dt.Date, time.Local)
		return t, true, err == nil
	}
	return time.Time{}, false, false
}
