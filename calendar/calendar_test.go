// ABOUTME: Tests for token refresh, calendar lookups, and next-action precedence
// ABOUTME: Google endpoints are replaced with httptest servers and fakes
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var now = time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	events   []Event
	err      error
	calls    int
	from, to time.Time
}

func (f *fakeSource) Events(_ context.Context, _ *oauth2.Token, from, to time.Time) ([]Event, error) {
	f.calls++
	f.from, f.to = from, to
	return f.events, f.err
}

func event(summary string, start time.Time, attendees ...string) Event {
	return Event{Summary: summary, Start: start, StartRaw: start.Format(time.RFC3339), HTMLLink: "https://cal/" + summary, Attendees: attendees}
}

func newService(src EventSource) *Service {
	s := NewService(src)
	s.Now = func() time.Time { return now }
	return s
}

var token = &oauth2.Token{AccessToken: "access"}

func TestNeedsRefresh(t *testing.T) {
	assert.True(t, NeedsRefresh(nil, now))
	assert.True(t, NeedsRefresh(&oauth2.Token{}, now))
	assert.False(t, NeedsRefresh(&oauth2.Token{AccessToken: "a"}, now))
	assert.False(t, NeedsRefresh(&oauth2.Token{AccessToken: "a", Expiry: now.Add(time.Hour)}, now))
	assert.True(t, NeedsRefresh(&oauth2.Token{AccessToken: "a", Expiry: now.Add(30 * time.Second)}, now))
	assert.True(t, NeedsRefresh(&oauth2.Token{AccessToken: "a", Expiry: now.Add(-time.Hour)}, now))
}

func TestMergeTokenKeepsRefreshToken(t *testing.T) {
	old := &oauth2.Token{AccessToken: "old", RefreshToken: "refresh", TokenType: "Bearer"}
	fresh := &oauth2.Token{AccessToken: "new", Expiry: now}

	merged := MergeToken(old, fresh)
	assert.Equal(t, "new", merged.AccessToken)
	assert.Equal(t, "refresh", merged.RefreshToken)
	assert.Equal(t, "Bearer", merged.TokenType)
	assert.Empty(t, fresh.RefreshToken, "input must not be modified")

	rotated := MergeToken(old, &oauth2.Token{AccessToken: "new", RefreshToken: "rotated"})
	assert.Equal(t, "rotated", rotated.RefreshToken)
	assert.Same(t, old, MergeToken(old, nil))
}

func TestFileTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token.json"))

	_, err := store.LoadToken(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.SaveToken(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)
	assert.Equal(t, "r", loaded.RefreshToken)
}

func TestTokenPathXDG(t *testing.T) {
	assert.Equal(t, "google-credentials.json", filepath.Base(TokenPath()))
	assert.Equal(t, "schoolcrm", filepath.Base(filepath.Dir(TokenPath())))
}

type memStore struct {
	token *oauth2.Token
	saves int
}

func (m *memStore) LoadToken(context.Context) (*oauth2.Token, error) {
	if m.token == nil {
		return nil, ErrNoToken
	}
	return m.token, nil
}

func (m *memStore) SaveToken(_ context.Context, t *oauth2.Token) error {
	m.token = t
	m.saves++
	return nil
}

func tokenServer(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testProvider(srv *httptest.Server, store TokenStore) *Provider {
	config := NewOAuthConfig("id", "secret", "")
	config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams}
	p := NewProvider(config, store)
	p.Now = func() time.Time { return now }
	return p
}

func TestProviderNoToken(t *testing.T) {
	srv, hits := tokenServer(t, http.StatusOK)
	_, err := testProvider(srv, &memStore{}).Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestProviderValidTokenSkipsRefresh(t *testing.T) {
	srv, hits := tokenServer(t, http.StatusOK)
	store := &memStore{token: &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(time.Hour)}}

	tok, err := testProvider(srv, store).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
	assert.Zero(t, atomic.LoadInt32(hits))
	assert.Zero(t, store.saves)
}

func TestProviderRefreshesAndPersists(t *testing.T) {
	srv, hits := tokenServer(t, http.StatusOK)
	store := &memStore{token: &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(10 * time.Second)}}

	tok, err := testProvider(srv, store).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "fresh", store.token.AccessToken)
}

func TestProviderRejectedRefresh(t *testing.T) {
	srv, _ := tokenServer(t, http.StatusBadRequest)
	store := &memStore{token: &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(-time.Hour)}}

	_, err := testProvider(srv, store).Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, store.saves)
}

func TestProviderExpiredWithoutRefreshToken(t *testing.T) {
	srv, _ := tokenServer(t, http.StatusOK)
	store := &memStore{token: &oauth2.Token{AccessToken: "a", Expiry: now.Add(-time.Hour)}}

	_, err := testProvider(srv, store).Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestNextMeetingsEarliestMatchWins(t *testing.T) {
	src := &fakeSource{events: []Event{
		event("Later sync", now.Add(72*time.Hour), "pat@lincoln.edu"),
		event("Kickoff", now.Add(24*time.Hour), "PAT@Lincoln.edu ", "me@crm.test"),
		event("Roosevelt demo", now.Add(48*time.Hour), "sam@roosevelt.org"),
	}}
	svc := newService(src)

	got, err := svc.NextMeetings(context.Background(), token, map[string][]string{
		"lincoln":   {"pat@lincoln.edu"},
		"roosevelt": {" Sam@Roosevelt.org"},
		"adams":     {"nobody@adams.edu"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Kickoff", got["lincoln"].Summary)
	assert.Equal(t, "Roosevelt demo", got["roosevelt"].Summary)
	assert.Equal(t, "https://cal/Kickoff", got["lincoln"].HTMLLink)
	_, present := got["adams"]
	assert.False(t, present)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, now, src.from)
	assert.Equal(t, now.AddDate(0, 3, 0), src.to)
}

func TestNextMeetingsSkipsCancelledPastAndSolo(t *testing.T) {
	cancelled := event("Cancelled", now.Add(time.Hour), "pat@lincoln.edu")
	cancelled.Cancelled = true
	src := &fakeSource{events: []Event{
		cancelled,
		event("Started", now.Add(-time.Hour), "pat@lincoln.edu"),
		event("Focus time", now.Add(2*time.Hour)),
	}}

	got, err := newService(src).NextMeetings(context.Background(), token, map[string][]string{"lincoln": {"pat@lincoln.edu"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNextMeetingsSharedEmail(t *testing.T) {
	src := &fakeSource{events: []Event{event("District call", now.Add(time.Hour), "super@district.org")}}
	got, err := newService(src).NextMeetings(context.Background(), token, map[string][]string{
		"a": {"super@district.org"},
		"b": {"super@district.org"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNextMeetingsWithoutEmailsSkipsCalendar(t *testing.T) {
	src := &fakeSource{}
	got, err := newService(src).NextMeetings(context.Background(), token, map[string][]string{"a": {"", "  "}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, src.calls)
}

func TestLookupRequiresToken(t *testing.T) {
	_, err := newService(&fakeSource{}).NextMeetings(context.Background(), nil, map[string][]string{"a": {"x@y.z"}})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLookupPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newService(&fakeSource{err: boom}).NextMeetings(context.Background(), token, map[string][]string{"a": {"x@y.z"}})
	assert.ErrorIs(t, err, boom)
}

func TestNextMeetingUsesYearWindow(t *testing.T) {
	src := &fakeSource{events: []Event{event("Renewal", now.AddDate(0, 8, 0), "pat@lincoln.edu")}}
	m, err := newService(src).NextMeeting(context.Background(), token, []string{"pat@lincoln.edu"})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Renewal", m.Summary)
	assert.Equal(t, now.AddDate(1, 0, 0), src.to)

	src.events = nil
	m, err = newService(src).NextMeeting(context.Background(), token, []string{"pat@lincoln.edu"})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestWindowsDiffer(t *testing.T) {
	assert.NotEqual(t, BatchLookupWindow.From(now), SingleLookupWindow.From(now))
}

func TestGoogleSourcePagesAndConverts(t *testing.T) {
	var pages int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))

		atomic.AddInt32(&pages, 1)
		w.Header().Set("Content-Type", "application/json")
		var body map[string]any
		if q.Get("pageToken") == "" {
			body = map[string]any{
				"items": []map[string]any{
					{"summary": "Kickoff", "htmlLink": "https://cal/1", "start": map[string]string{"dateTime": "2024-12-03T10:00:00-06:00"},
						"attendees": []map[string]string{{"email": "pat@lincoln.edu"}}},
					{"summary": "No start"},
				},
				"nextPageToken": "p2",
			}
		} else {
			body = map[string]any{
				"items": []map[string]any{
					{"summary": "Board day", "status": "cancelled", "start": map[string]string{"date": "2024-12-10"}},
				},
			}
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	src := &GoogleSource{Endpoint: srv.URL + "/"}
	events, err := src.Events(context.Background(), token, now, now.AddDate(0, 3, 0))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&pages))

	assert.Equal(t, "Kickoff", events[0].Summary)
	assert.Equal(t, []string{"pat@lincoln.edu"}, events[0].Attendees)
	assert.Equal(t, "2024-12-03T10:00:00-06:00", events[0].StartRaw)
	assert.True(t, events[1].Cancelled)
	assert.Equal(t, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), events[1].Start)
}

func TestResolveNextActionPrecedence(t *testing.T) {
	follow := models.NewDate(2024, 12, 9)
	deadline := models.NewDate(2024, 12, 15)
	p := &models.Partner{ID: uuid.New(), NextFollowUp: &follow, ProposalDeadline: &deadline}
	meeting := &Meeting{Summary: "Kickoff", Start: "2024-12-03T10:00:00Z"}

	assert.Equal(t, ActionMeeting, ResolveNextAction(p, meeting).Kind)

	got := ResolveNextAction(p, nil)
	assert.Equal(t, ActionFollowUp, got.Kind)
	assert.Equal(t, follow, *got.Date)

	p.NextFollowUp = nil
	got = ResolveNextAction(p, nil)
	assert.Equal(t, ActionDeadline, got.Kind)
	assert.Equal(t, deadline, *got.Date)

	p.ProposalDeadline = nil
	got = ResolveNextAction(p, nil)
	assert.Equal(t, ActionNone, got.Kind)
	assert.Nil(t, got.Date)
}

func TestPartnerEmails(t *testing.T) {
	a := models.Partner{ID: uuid.New(), Contacts: []models.Contact{{Email: "pat@lincoln.edu"}, {Name: "No email"}}}
	b := models.Partner{ID: uuid.New()}

	got := PartnerEmails([]models.Partner{a, b})
	assert.Equal(t, map[string][]string{a.ID.String(): {"pat@lincoln.edu"}}, got)
}

type staticCreds struct {
	token *oauth2.Token
	err   error
}

func (s staticCreds) Token(context.Context) (*oauth2.Token, error) { return s.token, s.err }

func TestClientDegradesSilently(t *testing.T) {
	partners := []models.Partner{{ID: uuid.New(), Contacts: []models.Contact{{Email: "pat@lincoln.edu"}}}}
	src := &fakeSource{events: []Event{event("Kickoff", now.Add(time.Hour), "pat@lincoln.edu")}}

	var nilClient *Client
	assert.Nil(t, nilClient.MeetingsFor(context.Background(), partners))

	c := NewClient(staticCreds{err: ErrNotAuthenticated}, newService(src))
	assert.Nil(t, c.MeetingsFor(context.Background(), partners))
	assert.Nil(t, c.MeetingFor(context.Background(), &partners[0]))
	assert.Zero(t, src.calls)

	c = NewClient(staticCreds{token: token}, newService(&fakeSource{err: errors.New("quota")}))
	assert.Nil(t, c.MeetingsFor(context.Background(), partners))

	c = NewClient(staticCreds{token: token}, newService(src))
	got := c.MeetingsFor(context.Background(), partners)
	assert.Equal(t, "Kickoff", got[partners[0].ID.String()].Summary)
	assert.Equal(t, "Kickoff", c.MeetingFor(context.Background(), &partners[0]).Summary)
}

func TestCallbackExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	config := NewOAuthConfig("id", "secret", "")
	config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams}

	_, err := exchange(context.Background(), config, url.Values{"state": {"other"}, "code": {"the-code"}}, "expected")
	assert.Error(t, err)

	_, err = exchange(context.Background(), config, url.Values{"state": {"expected"}}, "expected")
	assert.Error(t, err)

	tok, err := exchange(context.Background(), config, url.Values{"state": {"expected"}, "code": {"the-code"}}, "expected")
	require.NoError(t, err)
	assert.Equal(t, "r", tok.RefreshToken)
}

func TestAuthURLCarriesState(t *testing.T) {
	u, state := AuthURL(NewOAuthConfig("id", "secret", ""))
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, state, parsed.Query().Get("state"))
	assert.Equal(t, "offline", parsed.Query().Get("access_type"))
	assert.Equal(t, DefaultRedirectURL, parsed.Query().Get("redirect_uri"))
}
