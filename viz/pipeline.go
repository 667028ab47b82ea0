// ABOUTME: Pipeline summary grouped by partner status
// ABOUTME: Counts and contract value per stage, with lead source and onboarding step breakdowns
package viz

import (
	"github.com/harperreed/schoolcrm/models"
)

// StageSummary is one pipeline column.
type StageSummary struct {
	Status        string     `json:"status"`
	Count         int        `json:"count"`
	ContractValue int64      `json:"contract_value"` // in cents
	Breakdown     []Category `json:"breakdown,omitempty"`
}

// Category is a sub-group inside a stage.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summarize groups partners by status in pipeline order. New Lead is broken
// down by lead source and Onboarding by onboarding step; empty categories
// and partners without the field are left out of the breakdown.
func Summarize(partners []models.Partner) []StageSummary {
	stages := make([]StageSummary, len(models.PipelineStatuses))
	index := make(map[string]int, len(stages))
	for i, status := range models.PipelineStatuses {
		stages[i].Status = status
		index[status] = i
	}

	leadSources := map[string]int{}
	onboardingSteps := map[string]int{}
	for _, p := range partners {
		i, ok := index[p.Status]
		if !ok {
			continue
		}
		stages[i].Count++
		stages[i].ContractValue += p.ContractValue

		switch p.Status {
		case models.StatusNewLead:
			if p.LeadSource != "" {
				leadSources[p.LeadSource]++
			}
		case models.StatusOnboarding:
			if p.OnboardingStep != "" {
				onboardingSteps[p.OnboardingStep]++
			}
		}
	}

	stages[index[models.StatusNewLead]].Breakdown = breakdown(models.LeadSources, leadSources)
	stages[index[models.StatusOnboarding]].Breakdown = breakdown(models.OnboardingSteps, onboardingSteps)
	return stages
}

func breakdown(order []string, counts map[string]int) []Category {
	var out []Category
	for _, name := range order {
		if n := counts[name]; n > 0 {
			out = append(out, Category{Name: name, Count: n})
		}
	}
	return out
}
