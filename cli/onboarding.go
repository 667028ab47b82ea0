// ABOUTME: Onboarding checklist CLI commands
// ABOUTME: Show a partner's checklist, append custom steps, and toggle completion
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/schoolcrm/db"
)

// OnboardingCommand prints a partner's checklist with a progress bar
func OnboardingCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("onboarding", flag.ExitOnError)
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
	p := v.Partner()
	progress := v.Progress()

	fmt.Printf("%s onboarding  %d/%d  %s  %.0f%%\n\n", p.Name, progress.Completed, progress.Total,
		progressBar(progress, 20), progress.Percent())
	for i, t := range p.Onboarding {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		fmt.Printf("  %2d. %s %s", i+1, check, t.DisplayText())
		if t.DueDate != nil {
			fmt.Printf("  (due %s)", t.DueDate)
		}
		fmt.Println()
	}
	return nil
}

// AddOnboardingCommand appends a custom checklist step
func AddOnboardingCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("add-onboarding", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: add-onboarding <partner> [task text]")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	t, err := v.AddOnboardingTask(ctx, strings.Join(fs.Args()[1:], " "))
	if err != nil {
		return fmt.Errorf("failed to add onboarding task: %w", err)
	}
	fmt.Printf("✓ Onboarding step %d added: %s\n", len(v.Partner().Onboarding), t.DisplayText())
	return nil
}

// ToggleOnboardingCommand flips a checklist step by its 1-based number
func ToggleOnboardingCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("toggle-onboarding", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: toggle-onboarding <partner> <step-number>")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	checklist := v.Partner().Onboarding
	n, err := strconv.Atoi(fs.Arg(1))
	if err != nil || n < 1 || n > len(checklist) {
		return fmt.Errorf("step number must be between 1 and %d", len(checklist))
	}
	step := checklist[n-1]
	if err := v.ToggleOnboarding(ctx, step.ID); err != nil {
		return fmt.Errorf("failed to toggle onboarding step: %w", err)
	}

	state := "done"
	if step.Completed {
		state = "not done"
	}
	progress := v.Progress()
	fmt.Printf("✓ %s: %s  (%d/%d)\n", step.DisplayText(), state, progress.Completed, progress.Total)
	return nil
}
