// ABOUTME: Contact CLI commands
// ABOUTME: Add, update, delete, and mark primary contacts on a partner
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
)

// findByPrefix picks the one item whose id starts with ref.
func findByPrefix[T any](what string, items []T, id func(T) uuid.UUID, ref string) (uuid.UUID, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return uuid.Nil, fmt.Errorf("%s id required", what)
	}
	var match uuid.UUID
	n := 0
	for _, it := range items {
		if strings.HasPrefix(id(it).String(), ref) {
			match = id(it)
			n++
		}
	}
	switch n {
	case 0:
		return uuid.Nil, fmt.Errorf("no %s matches %q", what, ref)
	case 1:
		return match, nil
	}
	return uuid.Nil, fmt.Errorf("%q matches %d %ss; use a longer id", ref, n, what)
}

func contactID(c models.Contact) uuid.UUID { return c.ID }

// AddContactCommand adds a contact to a partner
func AddContactCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address (required)")
	role := fs.String("role", "", "Role at the school")
	phone := fs.String("phone", "", "Phone number")
	primary := fs.Bool("primary", false, "Make this the primary contact")
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

	c, err := v.AddContact(ctx, crm.ContactInput{Name: *name, Email: *email, Role: *role, Phone: *phone, IsPrimary: *primary})
	if err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}

	fmt.Printf("✓ Contact added to %s: %s <%s> (ID: %s)\n", v.Partner().Name, c.Name, c.Email, c.ID)
	if c.IsPrimary {
		fmt.Println("  Primary contact")
	}
	return nil
}

// UpdateContactCommand patches a contact
func UpdateContactCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	name := fs.String("name", "", "New name")
	email := fs.String("email", "", "New email")
	role := fs.String("role", "", "New role")
	phone := fs.String("phone", "", "New phone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: update-contact <partner> <contact-id> [flags]")
	}

	patch := models.ContactPatch{
		Name:  optional(*name),
		Email: optional(*email),
		Role:  optional(*role),
		Phone: optional(*phone),
	}
	if patch == (models.ContactPatch{}) {
		return fmt.Errorf("nothing to update")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	id, err := findByPrefix("contact", v.Partner().Contacts, contactID, fs.Arg(1))
	if err != nil {
		return err
	}
	if err := v.UpdateContact(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	fmt.Printf("✓ Contact updated: %s\n", id)
	return nil
}

// DeleteContactCommand removes a contact
func DeleteContactCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: delete-contact <partner> <contact-id>")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	id, err := findByPrefix("contact", v.Partner().Contacts, contactID, fs.Arg(1))
	if err != nil {
		return err
	}
	if err := v.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	fmt.Printf("✓ Contact deleted: %s\n", id)
	return nil
}

// SetPrimaryCommand makes a contact the partner's only primary contact
func SetPrimaryCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("set-primary", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: set-primary <partner> <contact-id>")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	id, err := findByPrefix("contact", v.Partner().Contacts, contactID, fs.Arg(1))
	if err != nil {
		return err
	}
	if err := v.SetPrimaryContact(ctx, id); err != nil {
		return fmt.Errorf("failed to set primary contact: %w", err)
	}
	fmt.Printf("✓ Primary contact for %s: %s\n", v.Partner().Name, v.Partner().PrimaryContact().Name)
	return nil
}
