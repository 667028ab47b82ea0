// ABOUTME: Credential provider that loads, refreshes, and persists the calendar token
// ABOUTME: Refresh decisions are pure functions of the token and the clock
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// ErrNotAuthenticated means there is no usable delegated credential.
var ErrNotAuthenticated = errors.New("not authenticated")

// RefreshSkew refreshes tokens slightly before they actually expire.
const RefreshSkew = time.Minute

// NeedsRefresh reports whether the token is expired or about to be.
// Tokens without an expiry never need a refresh.
func NeedsRefresh(token *oauth2.Token, now time.Time) bool {
	if token == nil || token.AccessToken == "" {
		return true
	}
	if token.Expiry.IsZero() {
		return false
	}
	return !now.Add(RefreshSkew).Before(token.Expiry)
}

// MergeToken combines a freshly refreshed token with the previous one.
// Google omits the refresh token on refresh responses, so the old one is kept.
func MergeToken(old, fresh *oauth2.Token) *oauth2.Token {
	if fresh == nil {
		return old
	}
	merged := *fresh
	if merged.RefreshToken == "" && old != nil {
		merged.RefreshToken = old.RefreshToken
	}
	if merged.TokenType == "" && old != nil {
		merged.TokenType = old.TokenType
	}
	return &merged
}

// Provider hands out a valid access token, refreshing through the OAuth
// config when needed.
type Provider struct {
	Config *oauth2.Config
	Store  TokenStore
	Now    func() time.Time
}

func NewProvider(config *oauth2.Config, store TokenStore) *Provider {
	return &Provider{Config: config, Store: store, Now: time.Now}
}

// Token returns ErrNotAuthenticated when nothing is stored or the stored
// token can no longer be refreshed.
func (p *Provider) Token(ctx context.Context) (*oauth2.Token, error) {
	token, err := p.Store.LoadToken(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	if !NeedsRefresh(token, p.Now()) {
		return token, nil
	}
	if token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	// Only the refresh token is passed so the source cannot reuse a token
	// that is inside the skew window.
	fresh, err := p.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Warn("calendar token refresh rejected", "error", retrieveErr.ErrorCode)
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	merged := MergeToken(token, fresh)
	if err := p.Store.SaveToken(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}
	log.Debug("refreshed calendar token", "expiry", merged.Expiry)
	return merged, nil
}
