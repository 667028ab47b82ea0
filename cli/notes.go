// ABOUTME: Note CLI commands
// ABOUTME: Log touchpoints with an optional follow-up task, and delete notes
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

// AddNoteCommand logs a touchpoint on a partner
func AddNoteCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-note", flag.ExitOnError)
	noteType := fs.String("type", models.NoteTypeCall, "Note type: "+strings.Join(models.NoteTypes, ", "))
	date := fs.String("date", "", "Touchpoint date (YYYY-MM-DD, default: today)")
	author := fs.String("author", "", "Author")
	content := fs.String("content", "", "Note body")
	followUp := fs.String("follow-up", "", "Follow-up task to attach")
	due := fs.String("due", "", "Follow-up due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner id or name required")
	}

	in := crm.NoteInput{Type: *noteType, Author: *author, Content: *content}
	d, err := parseDate("date", *date)
	if err != nil {
		return err
	}
	if d != nil {
		in.Date = *d
	}
	if *followUp != "" {
		dueDate, err := parseDate("due", *due)
		if err != nil {
			return err
		}
		in.FollowUp = &crm.TaskInput{Task: *followUp, DueDate: dueDate}
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	note, err := v.AddNote(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}

	fmt.Printf("✓ %s logged for %s on %s (ID: %s)\n", note.Type, v.Partner().Name, note.Date, note.ID)
	for _, t := range note.FollowUps {
		fmt.Printf("  Follow-up: %s (due %s)\n", t.Task, dateOrDash(t.DueDate))
	}
	return nil
}

// DeleteNoteCommand removes a note and its follow-up tasks
func DeleteNoteCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("delete-note", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: delete-note <partner> <note-id>")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	id, err := findByPrefix("note", v.Partner().Notes, func(n models.Note) uuid.UUID { return n.ID }, fs.Arg(1))
	if err != nil {
		return err
	}
	if err := v.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	fmt.Printf("✓ Note deleted: %s\n", id)
	return nil
}
