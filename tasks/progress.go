// ABOUTME: Onboarding checklist completion progress
// ABOUTME: Reports completed over total and a proportional bar width
package tasks

import (
	"math"

	"github.com/harperreed/schoolcrm/models"
)

type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func ChecklistProgress(checklist []models.OnboardingTask) Progress {
	p := Progress{Total: len(checklist)}
	for _, t := range checklist {
		if t.Completed {
			p.Completed++
		}
	}
	return p
}

// Percent returns completion in [0, 100]. An empty checklist is 0%.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Width scales completion to a bar of the given width.
func (p Progress) Width(width int) int {
	if p.Total == 0 || width <= 0 {
		return 0
	}
	return int(math.Round(float64(width) * float64(p.Completed) / float64(p.Total)))
}
