// ABOUTME: Event source abstraction over the Google Calendar API
// ABOUTME: Pages through the primary calendar between two instants
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const maxResults = 250

// Event is the subset of a calendar event the lookup needs.
type Event struct {
	Summary   string
	Start     time.Time
	StartRaw  string
	HTMLLink  string
	Attendees []string
	Cancelled bool
}

// EventSource lists events on the authenticated user's primary calendar.
type EventSource interface {
	Events(ctx context.Context, token *oauth2.Token, from, to time.Time) ([]Event, error)
}

// GoogleSource reads events through the Calendar API. Endpoint overrides
// the API base URL and is only set in tests.
type GoogleSource struct {
	Endpoint string
}

func (g *GoogleSource) service(ctx context.Context, token *oauth2.Token) (*calendarapi.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)))}
	if g.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.Endpoint))
	}

	service, err := calendarapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}

func (g *GoogleSource) Events(ctx context.Context, token *oauth2.Token, from, to time.Time) ([]Event, error) {
	if token == nil {
		return nil, ErrNotAuthenticated
	}

	service, err := g.service(ctx, token)
	if err != nil {
		return nil, err
	}

	call := service.Events.List("primary").
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339))

	var events []Event
	err = call.Pages(ctx, func(page *calendarapi.Events) error {
		for _, item := range page.Items {
			if ev, ok := convertEvent(item); ok {
				events = append(events, ev)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

// convertEvent drops events with no usable start. All-day events start at
// midnight UTC of their date.
func convertEvent(item *calendarapi.Event) (Event, bool) {
	if item == nil || item.Start == nil {
		return Event{}, false
	}

	ev := Event{
		Summary:   item.Summary,
		HTMLLink:  item.HtmlLink,
		Cancelled: item.Status == "cancelled",
	}

	var err error
	switch {
	case item.Start.DateTime != "":
		ev.StartRaw = item.Start.DateTime
		ev.Start, err = time.Parse(time.RFC3339, item.Start.DateTime)
	case item.Start.Date != "":
		ev.Start, err = time.Parse("2006-01-02", item.Start.Date)
		ev.StartRaw = ev.Start.Format(time.RFC3339)
	default:
		return Event{}, false
	}
	if err != nil {
		return Event{}, false
	}

	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev, true
}
