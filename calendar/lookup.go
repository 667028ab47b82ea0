// ABOUTME: Next-meeting lookup keyed by entity id and attendee emails
// ABOUTME: One calendar listing per call, earliest matching event per entity
package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// Lookup windows. The batched lookup runs on every list page load so it
// searches a shorter horizon than the single-partner lookup.
var (
	BatchLookupWindow  = Window{Months: 3}
	SingleLookupWindow = Window{Years: 1}
)

// Window is a calendar-relative horizon.
type Window struct {
	Years  int
	Months int
	Days   int
}

func (w Window) From(t time.Time) time.Time {
	return t.AddDate(w.Years, w.Months, w.Days)
}

// Meeting is the earliest upcoming event shared with an entity.
type Meeting struct {
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	HTMLLink string `json:"htmlLink"`

	StartTime time.Time `json:"-"`
}

type Service struct {
	Source EventSource
	Now    func() time.Time
}

func NewService(source EventSource) *Service {
	return &Service{Source: source, Now: time.Now}
}

// NextMeetings resolves the next meeting for every entity whose emails
// appear among an event's attendees. Entities without a match are absent
// from the result.
func (s *Service) NextMeetings(ctx context.Context, token *oauth2.Token, emails map[string][]string) (map[string]Meeting, error) {
	return s.lookup(ctx, token, emails, BatchLookupWindow)
}

// NextMeeting is the single-entity lookup over the longer window. It
// returns nil when nothing matches.
func (s *Service) NextMeeting(ctx context.Context, token *oauth2.Token, emails []string) (*Meeting, error) {
	const key = "entity"
	found, err := s.lookup(ctx, token, map[string][]string{key: emails}, SingleLookupWindow)
	if err != nil {
		return nil, err
	}
	m, ok := found[key]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Service) lookup(ctx context.Context, token *oauth2.Token, emails map[string][]string, window Window) (map[string]Meeting, error) {
	if token == nil {
		return nil, ErrNotAuthenticated
	}

	owners := make(map[string][]string)
	for id, list := range emails {
		for _, email := range list {
			if e := NormalizeEmail(email); e != "" {
				owners[e] = append(owners[e], id)
			}
		}
	}

	result := make(map[string]Meeting)
	if len(owners) == 0 {
		return result, nil
	}

	now := s.Now()
	events, err := s.Source.Events(ctx, token, now, window.From(now))
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		if ev.Cancelled || len(ev.Attendees) == 0 || ev.Start.Before(now) {
			continue
		}
		for _, attendee := range ev.Attendees {
			for _, id := range owners[NormalizeEmail(attendee)] {
				if cur, ok := result[id]; ok && !ev.Start.Before(cur.StartTime) {
					continue
				}
				result[id] = Meeting{Summary: ev.Summary, Start: ev.StartRaw, HTMLLink: ev.HTMLLink, StartTime: ev.Start}
			}
		}
	}

	log.Debug("calendar lookup", "entities", len(emails), "events", len(events), "matched", len(result))
	return result, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
