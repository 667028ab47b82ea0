// ABOUTME: Page-load facing calendar client that never fails the caller
// ABOUTME: Missing credentials or lookup errors degrade to no meetings
package calendar

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/harperreed/schoolcrm/models"
	"golang.org/x/oauth2"
)

// CredentialSource supplies the caller's delegated token.
type CredentialSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// Client pairs a credential source with a lookup service. A nil Client is
// valid and resolves nothing.
type Client struct {
	Credentials CredentialSource
	Service     *Service
}

func NewClient(creds CredentialSource, service *Service) *Client {
	return &Client{Credentials: creds, Service: service}
}

// MeetingsFor runs one batched lookup for all partners' contact emails.
func (c *Client) MeetingsFor(ctx context.Context, partners []models.Partner) map[string]Meeting {
	emails := PartnerEmails(partners)
	if c == nil || len(emails) == 0 {
		return nil
	}

	token, ok := c.token(ctx)
	if !ok {
		return nil
	}
	meetings, err := c.Service.NextMeetings(ctx, token, emails)
	if err != nil {
		log.Warn("calendar lookup failed", "error", err)
		return nil
	}
	return meetings
}

// MeetingFor looks up one partner over the single-partner window.
func (c *Client) MeetingFor(ctx context.Context, p *models.Partner) *Meeting {
	emails := p.ContactEmails()
	if c == nil || len(emails) == 0 {
		return nil
	}

	token, ok := c.token(ctx)
	if !ok {
		return nil
	}
	meeting, err := c.Service.NextMeeting(ctx, token, emails)
	if err != nil {
		log.Warn("calendar lookup failed", "partner", p.Name, "error", err)
		return nil
	}
	return meeting
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, bool) {
	token, err := c.Credentials.Token(ctx)
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		log.Debug("calendar not connected")
		return nil, false
	case err != nil:
		log.Warn("calendar credential unavailable", "error", err)
		return nil, false
	}
	return token, true
}
