// ABOUTME: Interactive OAuth authorization with a local callback server
// ABOUTME: Exchanges the returned code for a token and verifies the state value
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"golang.org/x/oauth2"
)

// AuthURL returns the consent URL and the state value the callback must echo.
func AuthURL(config *oauth2.Config) (string, string) {
	state := ulid.Make().String()
	return config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), state
}

// Authorize runs the browser flow. It listens on the redirect URL's host,
// calls show with the consent URL, and waits for the callback.
func Authorize(ctx context.Context, config *oauth2.Config, show func(authURL string)) (*oauth2.Token, error) {
	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redirect URL: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}

	authURL, state := AuthURL(config)
	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		token, err := exchange(r.Context(), config, r.URL.Query(), state)
		if err != nil {
			http.Error(w, "Authorization failed.", http.StatusBadRequest)
			notify(errCh, err)
			return
		}
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
		notify(tokenCh, token)
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			notify(errCh, err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	show(authURL)

	select {
	case token := <-tokenCh:
		return token, nil
	case err := <-errCh:
		return nil, fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// notify drops values once the flow already has a result.
func notify[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// Exchange trades a pasted authorization code for a token.
func Exchange(ctx context.Context, config *oauth2.Config, code string) (*oauth2.Token, error) {
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

func exchange(ctx context.Context, config *oauth2.Config, query url.Values, state string) (*oauth2.Token, error) {
	if query.Get("state") != state {
		return nil, fmt.Errorf("state mismatch in OAuth callback")
	}
	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("no authorization code received")
	}
	return Exchange(ctx, config, code)
}

// OpenBrowser attempts to open URL in default browser.
func OpenBrowser(target string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{target}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", target}
	default:
		cmd = "xdg-open"
		args = []string{target}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Debug("could not open browser", "error", err)
	}
}
