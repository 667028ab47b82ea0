// ABOUTME: Note (touchpoint) database operations
// ABOUTME: Creates notes together with an optional inline follow-up task
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

const noteColumns = `id, partner_id, type, date, author, content, created_at, updated_at`

var noteOrderColumns = []string{"date", "type", "created_at"}

// CreateNote inserts n. When followUp is non-nil it is inserted in the same
// transaction, owned by the new note, and appended to n.FollowUps.
func (s *Store) CreateNote(ctx context.Context, n *models.Note, followUp *models.FollowUpTask) error {
	n.ID = uuid.New()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID.String(), n.PartnerID.String(), n.Type, n.Date.String(), n.Author, n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	if followUp != nil {
		noteID := n.ID
		followUp.NoteID = &noteID
		followUp.PartnerID = n.PartnerID
		if err := insertTask(ctx, tx, followUp, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit note: %w", err)
	}
	if followUp != nil {
		n.FollowUps = append(n.FollowUps, *followUp)
	}
	return nil
}

// ListNotes returns notes newest first unless opts says otherwise. Follow-up
// tasks are not attached here.
func (s *Store) ListNotes(ctx context.Context, opts ListOptions) ([]models.Note, error) {
	if opts.OrderBy == "" {
		opts.OrderBy = "date"
		opts.Descending = true
	}
	query, args, err := selectQuery(`SELECT `+noteColumns+` FROM notes`, "partner_id", opts, noteOrderColumns, "date")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.PartnerID, &n.Type, &n.Date, &n.Author, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) UpdateNote(ctx context.Context, id uuid.UUID, patch models.NotePatch) error {
	var set setList
	set.str("type", patch.Type)
	if patch.Date != nil {
		set.add("date", patch.Date.String())
	}
	set.str("author", patch.Author)
	set.str("content", patch.Content)
	if set.empty() {
		return nil
	}
	return set.exec(ctx, s.db, "notes", id, true)
}

// DeleteNote removes the note and, by cascade, its follow-up tasks.
func (s *Store) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "notes", id)
}
