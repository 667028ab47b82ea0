// ABOUTME: Google Calendar CLI commands
// ABOUTME: Authorize read-only access, check the stored credential, and look up a partner's next action
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/db"
)

// CalendarAuthCommand runs the OAuth consent flow and stores the token.
func CalendarAuthCommand(config *oauth2.Config, tokens calendar.TokenStore, args []string) error {
	fs := flag.NewFlagSet("calendar auth", flag.ExitOnError)
	manual := fs.Bool("manual", false, "Paste the authorization code instead of using a local callback")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		token *oauth2.Token
		err   error
	)
	if *manual {
		token, err = pasteCode(ctx, config)
	} else {
		token, err = calendar.Authorize(ctx, config, func(authURL string) {
			fmt.Println("Opening browser for Google Calendar authorization...")
			fmt.Printf("If it doesn't open, visit:\n\n  %s\n\n", authURL)
			calendar.OpenBrowser(authURL)
		})
	}
	if err != nil {
		return err
	}

	if err := tokens.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	fmt.Println("✓ Google Calendar connected")
	return nil
}

func pasteCode(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("--manual needs an interactive terminal")
	}

	authURL, _ := calendar.AuthURL(config)
	fmt.Printf("Visit this URL and approve access:\n\n  %s\n\nAuthorization code: ", authURL)
	code, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read code: %w", err)
	}
	return calendar.Exchange(ctx, config, strings.TrimSpace(string(code)))
}

// CalendarStatusCommand reports whether a usable credential is stored.
func CalendarStatusCommand(tokens calendar.TokenStore, args []string) error {
	fs := flag.NewFlagSet("calendar status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := tokens.LoadToken(context.Background())
	switch {
	case errors.Is(err, calendar.ErrNoToken):
		fmt.Println("Calendar:  not connected (run 'schoolcrm calendar auth')")
		return nil
	case err != nil:
		return fmt.Errorf("failed to load token: %w", err)
	}

	fmt.Println("Calendar:  connected")
	if !token.Expiry.IsZero() {
		fmt.Printf("Expires:   %s\n", token.Expiry.Local().Format(time.RFC1123))
	}
	if calendar.NeedsRefresh(token, time.Now()) {
		if token.RefreshToken == "" {
			fmt.Println("Refresh:   expired with no refresh token; re-run 'calendar auth'")
		} else {
			fmt.Println("Refresh:   will refresh on next lookup")
		}
	}
	return nil
}

// CalendarNextCommand shows the next action for one partner, including any
// upcoming meeting with its contacts.
func CalendarNextCommand(store *db.Store, cal *calendar.Client, args []string) error {
	fs := flag.NewFlagSet("calendar next", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner id or name required")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()
	p := v.Partner()

	if len(p.ContactEmails()) == 0 {
		fmt.Printf("%s has no contact emails; skipping calendar lookup\n", p.Name)
	}
	action := calendar.ResolveNextAction(p, cal.MeetingFor(ctx, p))
	fmt.Printf("%s: %s\n", p.Name, action)
	if action.Meeting != nil && action.Meeting.HTMLLink != "" {
		fmt.Printf("  %s\n", action.Meeting.HTMLLink)
	}
	return nil
}
