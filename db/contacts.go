// ABOUTME: Contact database operations
// ABOUTME: Handles contact CRUD and exclusive primary-contact assignment per partner
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

const contactColumns = `id, partner_id, name, role, email, phone, is_primary, created_at, updated_at`

var contactOrderColumns = []string{"name", "email", "created_at", "is_primary"}

// CreateContact inserts c. A contact created as primary clears the flag on
// the partner's other contacts in the same transaction.
func (s *Store) CreateContact(ctx context.Context, c *models.Contact) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if c.IsPrimary {
		if _, err := tx.ExecContext(ctx, `
			UPDATE contacts SET is_primary = 0, updated_at = ? WHERE partner_id = ? AND is_primary = 1
		`, now, c.PartnerID.String()); err != nil {
			return fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.PartnerID.String(), c.Name, c.Role, c.Email, c.Phone, c.IsPrimary, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contact: %w", err)
	}
	return nil
}

func (s *Store) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id.String())
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts returns contacts in creation order unless opts says otherwise.
func (s *Store) ListContacts(ctx context.Context, opts ListOptions) ([]models.Contact, error) {
	query, args, err := selectQuery(`SELECT `+contactColumns+` FROM contacts`, "partner_id", opts, contactOrderColumns, "created_at")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (s *Store) UpdateContact(ctx context.Context, id uuid.UUID, patch models.ContactPatch) error {
	var set setList
	set.str("name", patch.Name)
	set.str("role", patch.Role)
	set.str("email", patch.Email)
	set.str("phone", patch.Phone)
	if set.empty() {
		return nil
	}
	return set.exec(ctx, s.db, "contacts", id, true)
}

func (s *Store) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "contacts", id)
}

// SetPrimaryContact flags id as its partner's only primary contact. The
// clear and the set happen in one transaction.
func (s *Store) SetPrimaryContact(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var partnerID string
	err = tx.QueryRowContext(ctx, `SELECT partner_id FROM contacts WHERE id = ?`, id.String()).Scan(&partnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up contact: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE contacts SET is_primary = 0, updated_at = ?
		WHERE partner_id = ? AND is_primary = 1 AND id != ?
	`, now, partnerID, id.String()); err != nil {
		return fmt.Errorf("failed to clear primary contact: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE contacts SET is_primary = 1, updated_at = ? WHERE id = ?
	`, now, id.String()); err != nil {
		return fmt.Errorf("failed to set primary contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit primary contact: %w", err)
	}
	return nil
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	if err := row.Scan(&c.ID, &c.PartnerID, &c.Name, &c.Role, &c.Email, &c.Phone, &c.IsPrimary, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
