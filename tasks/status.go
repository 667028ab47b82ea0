// ABOUTME: Status changes for items in a merged task list
// ABOUTME: Writes go straight to the store; onboarding rows are ignored here
package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

// StatusWriter persists a task's status together with its completed flag.
type StatusWriter interface {
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status string) error
}

// SetStatus writes status for a task or follow-up item and reports whether
// anything was written. Onboarding items are toggled from their checklist, so
// this is a no-op for them. The list holding it is not patched; callers
// refetch after the call returns.
func SetStatus(ctx context.Context, w StatusWriter, it Item, status string) (applied bool, err error) {
	if it.Kind == KindOnboarding {
		return false, nil
	}
	if !models.IsValidTaskStatus(status) {
		return false, fmt.Errorf("invalid task status %q", status)
	}
	if err := w.UpdateTaskStatus(ctx, it.ID, status); err != nil {
		return false, fmt.Errorf("failed to update task status: %w", err)
	}
	return true, nil
}

// ToggleStatus returns the status a checkbox click moves it to.
func ToggleStatus(it Item) string {
	if it.Completed {
		return models.TaskStatusNotStarted
	}
	return models.TaskStatusComplete
}
