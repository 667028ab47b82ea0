// ABOUTME: Important date, attachment, and school database operations
// ABOUTME: Small per-partner record tables with insert, list, update, and delete
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

const (
	importantDateColumns = `id, partner_id, title, date, notes, created_at`
	attachmentColumns    = `id, partner_id, name, url, type, created_at`
	schoolColumns        = `id, partner_id, name, student_count, staff_count, school_type, address, created_at`
)

func (s *Store) CreateImportantDate(ctx context.Context, d *models.ImportantDate) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO important_dates (`+importantDateColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID.String(), d.PartnerID.String(), d.Title, d.Date.String(), d.Notes, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert important date: %w", err)
	}
	return nil
}

// ListImportantDates returns dates in calendar order.
func (s *Store) ListImportantDates(ctx context.Context, opts ListOptions) ([]models.ImportantDate, error) {
	query, args, err := selectQuery(`SELECT `+importantDateColumns+` FROM important_dates`, "partner_id", opts, []string{"date", "title", "created_at"}, "date")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list important dates: %w", err)
	}
	defer rows.Close()

	var dates []models.ImportantDate
	for rows.Next() {
		var d models.ImportantDate
		if err := rows.Scan(&d.ID, &d.PartnerID, &d.Title, &d.Date, &d.Notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan important date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) UpdateImportantDate(ctx context.Context, id uuid.UUID, patch models.ImportantDatePatch) error {
	var set setList
	set.str("title", patch.Title)
	if patch.Date != nil {
		set.add("date", patch.Date.String())
	}
	set.str("notes", patch.Notes)
	if set.empty() {
		return nil
	}
	return set.exec(ctx, s.db, "important_dates", id, false)
}

func (s *Store) DeleteImportantDate(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "important_dates", id)
}

func (s *Store) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (`+attachmentColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID.String(), a.PartnerID.String(), a.Name, a.URL, a.Type, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

func (s *Store) ListAttachments(ctx context.Context, opts ListOptions) ([]models.Attachment, error) {
	query, args, err := selectQuery(`SELECT `+attachmentColumns+` FROM attachments`, "partner_id", opts, []string{"name", "created_at"}, "created_at")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.PartnerID, &a.Name, &a.URL, &a.Type, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (s *Store) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "attachments", id)
}

func (s *Store) CreateSchool(ctx context.Context, sc *models.School) error {
	sc.ID = uuid.New()
	sc.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (`+schoolColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.ID.String(), uuidArg(sc.PartnerID), sc.Name, sc.StudentCount, sc.StaffCount, sc.SchoolType, sc.Address, sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert school: %w", err)
	}
	return nil
}

func (s *Store) ListSchools(ctx context.Context, opts ListOptions) ([]models.School, error) {
	query, args, err := selectQuery(`SELECT `+schoolColumns+` FROM schools`, "partner_id", opts, []string{"name", "student_count", "created_at"}, "name")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var sc models.School
		var partnerID uuid.NullUUID
		if err := rows.Scan(&sc.ID, &partnerID, &sc.Name, &sc.StudentCount, &sc.StaffCount, &sc.SchoolType, &sc.Address, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		sc.PartnerID = uuidPtr(partnerID)
		schools = append(schools, sc)
	}
	return schools, rows.Err()
}

func (s *Store) DeleteSchool(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "schools", id)
}
