// ABOUTME: Follow-up task database operations
// ABOUTME: Covers standalone and note-owned tasks with status and completed kept in step
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

const taskColumns = `id, partner_id, note_id, task, due_date, notes, status, completed, created_at, updated_at`

var taskOrderColumns = []string{"due_date", "created_at", "status", "task"}

// CreateTask inserts a follow-up task. A nil NoteID makes it standalone.
func (s *Store) CreateTask(ctx context.Context, t *models.FollowUpTask) error {
	return insertTask(ctx, s.db, t, time.Now().UTC())
}

func insertTask(ctx context.Context, q execer, t *models.FollowUpTask, now time.Time) error {
	t.ID = uuid.New()
	if t.Status == "" {
		t.Status = models.TaskStatusNotStarted
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO follow_up_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID.String(), t.PartnerID.String(), uuidArg(t.NoteID), t.Task, models.DateArg(t.DueDate), t.Notes,
		t.Status, t.Completed(), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.FollowUpTask, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM follow_up_tasks WHERE id = ?`, id.String())
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns standalone and note-owned tasks in creation order unless
// opts says otherwise.
func (s *Store) ListTasks(ctx context.Context, opts ListOptions) ([]models.FollowUpTask, error) {
	query, args, err := selectQuery(`SELECT `+taskColumns+` FROM follow_up_tasks`, "partner_id", opts, taskOrderColumns, "created_at")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.FollowUpTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) error {
	var set setList
	set.str("task", patch.Task)
	set.date("due_date", patch.DueDate)
	set.str("notes", patch.Notes)
	if set.empty() {
		return nil
	}
	return set.exec(ctx, s.db, "follow_up_tasks", id, true)
}

// UpdateTaskStatus writes status and the matching completed flag in a single
// row update.
func (s *Store) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !models.IsValidTaskStatus(status) {
		return fmt.Errorf("invalid task status %q", status)
	}
	var set setList
	set.add("status", status)
	set.add("completed", status == models.TaskStatusComplete)
	return set.exec(ctx, s.db, "follow_up_tasks", id, true)
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "follow_up_tasks", id)
}

func scanTask(row rowScanner) (*models.FollowUpTask, error) {
	var t models.FollowUpTask
	var noteID uuid.NullUUID
	var due models.NullDate
	var completed bool

	if err := row.Scan(&t.ID, &t.PartnerID, &noteID, &t.Task, &due, &t.Notes, &t.Status, &completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.NoteID = uuidPtr(noteID)
	t.DueDate = due.Ptr()
	return &t, nil
}
