// ABOUTME: Calendar token store backed by Charm KV
// ABOUTME: Lets every linked device share one Google Calendar authorization

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/schoolcrm/calendar"
	"golang.org/x/oauth2"
)

const tokenKey = "calendar/google-token"

// TokenStore implements calendar.TokenStore on top of a charm client.
type TokenStore struct {
	client *Client
}

var _ calendar.TokenStore = (*TokenStore)(nil)

func NewTokenStore(c *Client) *TokenStore {
	return &TokenStore{client: c}
}

func (s *TokenStore) LoadToken(_ context.Context) (*oauth2.Token, error) {
	data, err := s.client.Get([]byte(tokenKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, calendar.ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

func (s *TokenStore) SaveToken(_ context.Context, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := s.client.Set([]byte(tokenKey), data); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// ClearToken forgets the shared authorization.
func (s *TokenStore) ClearToken() error {
	if err := s.client.Delete([]byte(tokenKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
