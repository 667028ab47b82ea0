// ABOUTME: Task CLI commands
// ABOUTME: Add standalone tasks, change status, and list the merged task view
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

func itemID(it tasks.Item) uuid.UUID { return it.ID }

// AddTaskCommand adds a standalone task to a partner
func AddTaskCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-task", flag.ExitOnError)
	text := fs.String("task", "", "Task text (required)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Task notes")
	status := fs.String("status", "", "Initial status (default: Not Started)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner id or name required")
	}
	dueDate, err := parseDate("due", *due)
	if err != nil {
		return err
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	t, err := v.AddTask(ctx, crm.TaskInput{Task: *text, DueDate: dueDate, Notes: *notes, Status: *status})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	fmt.Printf("✓ Task added to %s: %s (ID: %s)\n", v.Partner().Name, t.Task, t.ID)
	return nil
}

// CompleteTaskCommand checks a task off, or reopens it with --undo
func CompleteTaskCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("complete-task", flag.ExitOnError)
	undo := fs.Bool("undo", false, "Mark the task not started again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: complete-task <partner> <task-id>")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	id, err := findByPrefix("task", v.Tasks(), itemID, fs.Arg(1))
	if err != nil {
		return err
	}
	if err := v.CompleteTask(ctx, id, !*undo); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if *undo {
		fmt.Printf("✓ Task reopened: %s\n", id)
	} else {
		fmt.Printf("✓ Task complete: %s\n", id)
	}
	return nil
}

// TaskStatusCommand sets a task's status
func TaskStatusCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("task-status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return fmt.Errorf("usage: task-status <partner> <task-id> <status> (one of: %s)", strings.Join(models.TaskStatuses, ", "))
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	id, err := findByPrefix("task", v.Tasks(), itemID, fs.Arg(1))
	if err != nil {
		return err
	}
	status := strings.Join(fs.Args()[2:], " ")
	if err := v.SetTaskStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to set task status: %w", err)
	}
	fmt.Printf("✓ Task %s: %s\n", id.String()[:8], status)
	return nil
}

// ListTasksCommand lists tasks, follow-ups, and dated onboarding items across partners
func ListTasksCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("list-tasks", flag.ExitOnError)
	search := fs.String("search", "", "Match task text or partner name")
	status := fs.String("status", tasks.FilterActive, "active, all, or an exact status")
	kind := fs.String("type", tasks.FilterAll, "task, followup, onboarding, or all")
	partner := fs.String("partner", "", "Only this partner (id or name)")
	owner := fs.String("owner", "", "Only partners owned by this staff lead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	f := tasks.Filter{Search: *search, Status: *status, Type: *kind, Owner: *owner}
	if *partner != "" {
		id, err := resolvePartner(ctx, store, *partner)
		if err != nil {
			return err
		}
		f.Partner = id.String()
	}

	dir := crm.NewDirectory(ctx, store)
	defer dir.Close()
	if err := dir.Refresh(ctx); err != nil {
		return err
	}

	today := models.Today()
	all := dir.Tasks(tasks.Filter{Status: tasks.FilterAll})
	items := dir.Tasks(f)
	if len(items) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tTASK\tPARTNER\tTYPE\tSTATUS\tDUE\tID")
	_, _ = fmt.Fprintln(w, "\t----\t-------\t----\t------\t---\t--")
	for _, it := range items {
		indicator := "  "
		switch tasks.Classify(it, today) {
		case tasks.UrgencyOverdue:
			indicator = "🔴"
		case tasks.UrgencyDueToday:
			indicator = "🟡"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			indicator, it.Title, it.PartnerName, it.Kind, it.Status, dateOrDash(it.Due), it.ID.String()[:8])
	}
	_ = w.Flush()

	counts := tasks.Count(all, today)
	fmt.Printf("\nShowing %d of %d  •  %d overdue  •  %d due today\n", len(items), counts.Total, counts.Overdue, counts.DueToday)
	return nil
}
