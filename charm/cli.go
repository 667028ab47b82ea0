// ABOUTME: CLI commands for the Charm-synced calendar credential
// ABOUTME: Link this device, show sync status, pull the latest token, or unshare it

package charm

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/harperreed/schoolcrm/calendar"
)

// LinkCommand links this device to a Charm account.
// Charm uses SSH key auth, so no login step is needed.
func LinkCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm link", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", cfg.Host)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	if id, err := c.ID(); err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)
	fmt.Println("\nSet SCHOOLCRM_TOKEN_STORE=charm to share the calendar connection.")
	return nil
}

// StatusCommand shows current sync configuration and whether a calendar
// token has been shared.
func StatusCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Println("Charm Sync Status")
	fmt.Println("─────────────────")
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)

	if id, err := c.ID(); err != nil {
		fmt.Println("Status:    Not connected")
	} else {
		fmt.Printf("Status:    Connected\nID:        %s\n", id)
	}

	_, err := NewTokenStore(c).LoadToken(context.Background())
	switch {
	case errors.Is(err, calendar.ErrNoToken):
		fmt.Println("Calendar:  not shared")
	case err != nil:
		fmt.Printf("Calendar:  unreadable (%v)\n", err)
	default:
		fmt.Println("Calendar:  shared")
	}

	if keys, err := c.KeysWithPrefix("calendar/"); err == nil {
		fmt.Printf("Keys:      %d\n", len(keys))
	}
	return nil
}

// UnshareCommand removes the shared calendar token from every linked device.
func UnshareCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm unshare", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := NewTokenStore(c).ClearToken(); err != nil {
		return err
	}
	fmt.Println("✓ Calendar authorization removed")
	return nil
}

// SyncCommand performs an immediate sync.
func SyncCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm sync", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Synced")
	return nil
}
