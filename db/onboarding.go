// ABOUTME: Onboarding checklist database operations
// ABOUTME: Seeds canonical steps, appends custom rows, and keeps sequence order
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

const onboardingColumns = `id, partner_id, sequence, task, custom, completed, due_date, created_at, updated_at`

var onboardingOrderColumns = []string{"sequence", "due_date", "created_at"}

func seedOnboarding(ctx context.Context, q execer, partnerID uuid.UUID, now time.Time) ([]models.OnboardingTask, error) {
	checklist := make([]models.OnboardingTask, 0, len(models.DefaultOnboardingTasks))
	for i, text := range models.DefaultOnboardingTasks {
		t := models.OnboardingTask{
			ID:        uuid.New(),
			PartnerID: partnerID,
			Sequence:  i,
			Task:      text,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := insertOnboarding(ctx, q, &t); err != nil {
			return nil, err
		}
		checklist = append(checklist, t)
	}
	return checklist, nil
}

func insertOnboarding(ctx context.Context, q execer, t *models.OnboardingTask) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO onboarding_tasks (`+onboardingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID.String(), t.PartnerID.String(), t.Sequence, t.Task, t.Custom, t.Completed,
		models.DateArg(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert onboarding task: %w", err)
	}
	return nil
}

// CreateOnboardingTask appends a custom row after the partner's last
// sequence index. Task text may be empty.
func (s *Store) CreateOnboardingTask(ctx context.Context, t *models.OnboardingTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sequence) + 1, 0) FROM onboarding_tasks WHERE partner_id = ?
	`, t.PartnerID.String()).Scan(&next); err != nil {
		return fmt.Errorf("failed to find next sequence: %w", err)
	}

	now := time.Now().UTC()
	t.ID = uuid.New()
	t.Sequence = next
	t.Custom = true
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := insertOnboarding(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit onboarding task: %w", err)
	}
	return nil
}

// ListOnboardingTasks returns checklist rows by sequence index.
func (s *Store) ListOnboardingTasks(ctx context.Context, opts ListOptions) ([]models.OnboardingTask, error) {
	query, args, err := selectQuery(`SELECT `+onboardingColumns+` FROM onboarding_tasks`, "partner_id", opts, onboardingOrderColumns, "sequence")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list onboarding tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.OnboardingTask
	for rows.Next() {
		var t models.OnboardingTask
		var due models.NullDate
		if err := rows.Scan(&t.ID, &t.PartnerID, &t.Sequence, &t.Task, &t.Custom, &t.Completed, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan onboarding task: %w", err)
		}
		t.DueDate = due.Ptr()
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateOnboardingTask(ctx context.Context, id uuid.UUID, patch models.OnboardingPatch) error {
	var set setList
	set.str("task", patch.Task)
	if patch.Completed != nil {
		set.add("completed", *patch.Completed)
	}
	set.date("due_date", patch.DueDate)
	if set.empty() {
		return nil
	}
	return set.exec(ctx, s.db, "onboarding_tasks", id, true)
}

func (s *Store) DeleteOnboardingTask(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "onboarding_tasks", id)
}
