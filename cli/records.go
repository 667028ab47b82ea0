// ABOUTME: CLI commands for secondary partner records
// ABOUTME: Important dates, attachments, and schools under a district
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
)

// AddDateCommand records an important date for a partner
func AddDateCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-date", flag.ExitOnError)
	title := fs.String("title", "", "What happens on this date (required)")
	date := fs.String("date", "", "Date (YYYY-MM-DD, required)")
	notes := fs.String("notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner id or name required")
	}
	d, err := parseDate("date", *date)
	if err != nil {
		return err
	}
	in := crm.ImportantDateInput{Title: *title, Notes: *notes}
	if d != nil {
		in.Date = *d
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	rec, err := v.AddImportantDate(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to add date: %w", err)
	}
	fmt.Printf("✓ %s on %s added to %s\n", rec.Title, rec.Date, v.Partner().Name)
	return nil
}

// AddAttachmentCommand links a file or URL to a partner
func AddAttachmentCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-attachment", flag.ExitOnError)
	name := fs.String("name", "", "Display name (required)")
	url := fs.String("url", "", "File or link URL (required)")
	kind := fs.String("type", models.AttachmentLink, "file or link")
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

	a, err := v.AddAttachment(ctx, crm.AttachmentInput{Name: *name, URL: *url, Type: *kind})
	if err != nil {
		return fmt.Errorf("failed to add attachment: %w", err)
	}
	fmt.Printf("✓ Attachment added to %s: %s (%s)\n", v.Partner().Name, a.Name, a.URL)
	return nil
}

// AddSchoolCommand adds a campus, optionally under a district partner
func AddSchoolCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-school", flag.ExitOnError)
	name := fs.String("name", "", "School name (required)")
	partner := fs.String("partner", "", "District partner (id or name)")
	students := fs.Int("students", 0, "Student count")
	staff := fs.Int("staff", 0, "Staff count")
	schoolType := fs.String("type", "", "School type (e.g. Elementary)")
	address := fs.String("address", "", "Street address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("--name is required")
	}
	if *students < 0 || *staff < 0 {
		return fmt.Errorf("counts cannot be negative")
	}

	ctx := context.Background()
	school := &models.School{
		Name:         strings.TrimSpace(*name),
		StudentCount: *students,
		StaffCount:   *staff,
		SchoolType:   *schoolType,
		Address:      *address,
	}
	if *partner != "" {
		id, err := resolvePartner(ctx, store, *partner)
		if err != nil {
			return err
		}
		school.PartnerID = &id
	}

	if err := store.CreateSchool(ctx, school); err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}
	fmt.Printf("✓ School created: %s (ID: %s)\n", school.Name, school.ID)
	return nil
}
