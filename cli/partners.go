// ABOUTME: Partner CLI commands
// ABOUTME: Human-friendly commands for adding, listing, showing, updating, and deleting partners
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/harperreed/schoolcrm/viz"
)

// resolvePartner accepts a full id, a unique id prefix, or an exact
// case-insensitive name.
func resolvePartner(ctx context.Context, store *db.Store, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.Nil, fmt.Errorf("partner is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	partners, err := store.ListPartners(ctx, db.ListOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list partners: %w", err)
	}
	var matches []models.Partner
	for _, p := range partners {
		if strings.HasPrefix(p.ID.String(), strings.ToLower(ref)) || strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no partner matches %q", ref)
	case 1:
		return matches[0].ID, nil
	}
	return uuid.Nil, fmt.Errorf("%q matches %d partners; use a longer id", ref, len(matches))
}

// openPartner resolves ref and loads the partner's detail view. The caller
// closes the view.
func openPartner(ctx context.Context, store *db.Store, ref string) (*crm.PartnerView, error) {
	id, err := resolvePartner(ctx, store, ref)
	if err != nil {
		return nil, err
	}
	v := crm.NewPartnerView(ctx, store, id)
	found, err := v.Refresh(ctx)
	if err != nil {
		v.Close()
		return nil, err
	}
	if !found {
		v.Close()
		return nil, fmt.Errorf("partner not found: %s", ref)
	}
	return v, nil
}

func parseDate(flagName, value string) (*models.Date, error) {
	d, err := models.ParseDatePtr(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s (want YYYY-MM-DD): %w", flagName, err)
	}
	return d, nil
}

// optional maps an unset string flag to nil.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dateOrDash(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

// AddPartnerCommand adds a new partner with the default onboarding checklist
func AddPartnerCommand(store *db.Store, staffLead string, args []string) error {
	fs := flag.NewFlagSet("add-partner", flag.ExitOnError)
	name := fs.String("name", "", "School or district name (required)")
	status := fs.String("status", "", "Pipeline status (default: New Lead)")
	source := fs.String("source", "", "Lead source")
	priority := fs.String("priority", "", "High, Medium, or Low (default: Medium)")
	district := fs.String("district", "", "District name")
	city := fs.String("city", "", "City")
	state := fs.String("state", "", "State")
	students := fs.Int("students", 0, "Student count")
	lead := fs.String("lead", staffLead, "Staff lead")
	followUp := fs.String("follow-up", "", "Next follow-up date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	next, err := parseDate("follow-up", *followUp)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dir := crm.NewDirectory(ctx, store)
	defer dir.Close()

	p, err := dir.CreatePartner(ctx, crm.PartnerInput{
		Name:         *name,
		Status:       *status,
		LeadSource:   *source,
		Priority:     *priority,
		District:     *district,
		City:         *city,
		State:        *state,
		StudentCount: *students,
		StaffLead:    *lead,
		NextFollowUp: next,
	})
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}

	fmt.Printf("✓ Partner created: %s (ID: %s)\n", p.Name, p.ID)
	fmt.Printf("  Status: %s\n", p.Status)
	if p.StaffLead != "" {
		fmt.Printf("  Staff lead: %s\n", p.StaffLead)
	}
	fmt.Printf("  Onboarding checklist: %d steps\n", len(p.Onboarding))
	return nil
}

// ListPartnersCommand lists partners with their next action
func ListPartnersCommand(store *db.Store, cal *calendar.Client, args []string) error {
	fs := flag.NewFlagSet("list-partners", flag.ExitOnError)
	query := fs.String("query", "", "Search by name or district")
	status := fs.String("status", "", "Filter by pipeline status")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *status != "" && !models.IsValidStatus(*status) {
		return fmt.Errorf("invalid --status %q (valid: %s)", *status, strings.Join(models.PipelineStatuses, ", "))
	}

	ctx := context.Background()
	found, err := store.FindPartners(ctx, *query, *status, *limit)
	if err != nil {
		return fmt.Errorf("failed to find partners: %w", err)
	}
	if len(found) == 0 {
		fmt.Println("No partners found")
		return nil
	}

	// Hydrate so contact emails are available for one batched calendar lookup.
	all, err := crm.LoadPartners(ctx, store)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.Partner, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	partners := make([]models.Partner, 0, len(found))
	for _, p := range found {
		if full, ok := byID[p.ID]; ok {
			partners = append(partners, *full)
		}
	}
	meetings := cal.MeetingsFor(ctx, partners)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tPRIORITY\tLEAD\tNEXT ACTION\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t--------\t----\t-----------\t--")
	for i := range partners {
		p := &partners[i]
		var meeting *calendar.Meeting
		if m, ok := meetings[p.ID.String()]; ok {
			meeting = &m
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.Status, p.Priority, dash(p.StaffLead),
			calendar.ResolveNextAction(p, meeting), p.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d partner(s)\n", len(partners))
	return nil
}

// ShowPartnerCommand prints a partner's full detail
func ShowPartnerCommand(store *db.Store, cal *calendar.Client, args []string) error {
	fs := flag.NewFlagSet("show-partner", flag.ExitOnError)
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
	today := models.Today()

	fmt.Printf("%s\n", p.Name)
	fmt.Printf("  ID:          %s\n", p.ID)
	fmt.Printf("  Status:      %s\n", p.Status)
	switch p.Status {
	case models.StatusNewLead:
		fmt.Printf("  Lead source: %s\n", dash(p.LeadSource))
	case models.StatusOnboarding:
		fmt.Printf("  Step:        %s\n", dash(p.OnboardingStep))
	}
	fmt.Printf("  Priority:    %s\n", p.Priority)
	fmt.Printf("  Staff lead:  %s\n", dash(p.StaffLead))
	if p.District != "" {
		fmt.Printf("  District:    %s\n", p.District)
	}
	if p.ContractValue > 0 {
		fmt.Printf("  Contract:    %s\n", viz.FormatCents(p.ContractValue))
	}
	fmt.Printf("  Next action: %s\n", calendar.ResolveNextAction(p, cal.MeetingFor(ctx, p)))

	if len(p.Contacts) > 0 {
		fmt.Println("\nCONTACTS")
		for _, c := range p.Contacts {
			marker := " "
			if c.IsPrimary {
				marker = "★"
			}
			fmt.Printf("  %s %s  %s  %s  (%s)\n", marker, c.Name, dash(c.Role), dash(c.Email), c.ID.String()[:8])
		}
	}

	if items := v.Tasks(); len(items) > 0 {
		fmt.Println("\nTASKS")
		for _, it := range items {
			check := "[ ]"
			if it.Completed {
				check = "[x]"
			}
			urgency := ""
			if u := tasks.Classify(it, today); u == tasks.UrgencyOverdue || u == tasks.UrgencyDueToday {
				urgency = "  ⚠ " + u.String()
			}
			fmt.Printf("  %s %s  %s  due %s%s  (%s)\n", check, it.Title, it.Status, dateOrDash(it.Due), urgency, it.ID.String()[:8])
		}
	}

	if len(p.Notes) > 0 {
		fmt.Println("\nNOTES")
		for _, n := range p.Notes {
			fmt.Printf("  %s  %-13s %s\n", n.Date, n.Type, n.Content)
		}
	}

	progress := v.Progress()
	fmt.Printf("\nONBOARDING  %d/%d  %s\n", progress.Completed, progress.Total, progressBar(progress, 20))
	return nil
}

func progressBar(p tasks.Progress, width int) string {
	filled := p.Width(width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// UpdatePartnerCommand patches a partner's fields
func UpdatePartnerCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("update-partner", flag.ExitOnError)
	name := fs.String("name", "", "New name")
	status := fs.String("status", "", "Pipeline status")
	source := fs.String("source", "", "Lead source")
	step := fs.String("step", "", "Onboarding step")
	health := fs.String("health", "", "Partnership health")
	priority := fs.String("priority", "", "Priority")
	lead := fs.String("lead", "", "Staff lead")
	summary := fs.String("summary", "", "Account summary")
	value := fs.Int64("value", -1, "Contract value in cents")
	followUp := fs.String("follow-up", "", "Next follow-up date (YYYY-MM-DD, 'none' clears)")
	deadline := fs.String("deadline", "", "Proposal deadline (YYYY-MM-DD, 'none' clears)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner id or name required")
	}

	patch := models.PartnerPatch{
		Name:              optional(*name),
		Status:            optional(*status),
		LeadSource:        optional(*source),
		OnboardingStep:    optional(*step),
		PartnershipHealth: optional(*health),
		Priority:          optional(*priority),
		StaffLead:         optional(*lead),
		Summary:           optional(*summary),
	}
	if *value >= 0 {
		patch.ContractValue = value
	}
	var err error
	if patch.NextFollowUp, err = dateFlag("follow-up", *followUp); err != nil {
		return err
	}
	if patch.ProposalDeadline, err = dateFlag("deadline", *deadline); err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to update")
	}

	ctx := context.Background()
	v, err := openPartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.UpdateFields(ctx, patch); err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}
	fmt.Printf("✓ Partner updated: %s\n", v.Partner().Name)
	return nil
}

// dateFlag maps "" to untouched and "none" to cleared.
func dateFlag(flagName, value string) (*models.DateField, error) {
	switch value {
	case "":
		return nil, nil
	case "none":
		return models.ClearDate(), nil
	}
	d, err := parseDate(flagName, value)
	if err != nil {
		return nil, err
	}
	return models.SetDate(*d), nil
}

// DeletePartnerCommand removes a partner and everything it owns
func DeletePartnerCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("delete-partner", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner id or name required")
	}

	ctx := context.Background()
	id, err := resolvePartner(ctx, store, fs.Arg(0))
	if err != nil {
		return err
	}

	dir := crm.NewDirectory(ctx, store)
	defer dir.Close()
	if err := dir.DeletePartner(ctx, id); err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}

	fmt.Printf("✓ Partner deleted: %s\n", id)
	return nil
}
