// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of the pipeline and task urgency
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

type DashboardStats struct {
	Pipeline      []StageSummary
	TotalPartners int
	TotalContacts int
	Tasks         tasks.Counts
}

// GenerateDashboardStats derives dashboard numbers from hydrated partners.
func GenerateDashboardStats(partners []models.Partner, today models.Date) *DashboardStats {
	stats := &DashboardStats{
		Pipeline:      Summarize(partners),
		TotalPartners: len(partners),
		Tasks:         tasks.Count(tasks.Global(partners), today),
	}
	for _, p := range partners {
		stats.TotalContacts += len(p.Contacts)
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  PARTNER PIPELINE DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  🏫 %d partners  📇 %d contacts  ✅ %d open tasks\n\n",
		stats.TotalPartners, stats.TotalContacts, stats.Tasks.Open))

	if stats.Tasks.Overdue > 0 || stats.Tasks.DueToday > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if stats.Tasks.Overdue > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d tasks overdue\n", stats.Tasks.Overdue))
		}
		if stats.Tasks.DueToday > 0 {
			out.WriteString(fmt.Sprintf("  📅 %d tasks due today\n", stats.Tasks.DueToday))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, stages []StageSummary) {
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		// 0-10 blocks
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-21s %s  %2d (%s)\n", s.Status, bar, s.Count, FormatCents(s.ContractValue)))
		for _, c := range s.Breakdown {
			out.WriteString(fmt.Sprintf("      %-17s %d\n", c.Name, c.Count))
		}
	}
}

// FormatCents renders a contract value in whole dollars with a K suffix
// above a thousand.
func FormatCents(cents int64) string {
	dollars := cents / 100
	if dollars >= 1000 {
		return fmt.Sprintf("$%dK", dollars/1000)
	}
	return fmt.Sprintf("$%d", dollars)
}
