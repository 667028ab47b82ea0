// ABOUTME: Builds the per-partner and global task lists
// ABOUTME: The partner list omits onboarding rows; the global list includes dated ones
package tasks

import "github.com/harperreed/schoolcrm/models"

// ForPartner merges a partner's standalone tasks with the follow-ups of every
// note, sorted incomplete first then by due date. Onboarding rows have their
// own checklist and are left out.
func ForPartner(p *models.Partner) []Item {
	items := partnerTasks(p)
	SortDetail(items)
	return items
}

// Global merges every task kind across partners, sorted by due date. An
// onboarding row only appears once it has a due date.
func Global(partners []models.Partner) []Item {
	var items []Item
	for i := range partners {
		p := &partners[i]
		items = append(items, partnerTasks(p)...)
		for _, o := range p.Onboarding {
			if o.DueDate != nil {
				items = append(items, FromOnboarding(p, o))
			}
		}
	}
	SortGlobal(items)
	return items
}

func partnerTasks(p *models.Partner) []Item {
	items := make([]Item, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		items = append(items, FromTask(p, t, nil))
	}
	for i := range p.Notes {
		note := &p.Notes[i]
		for _, t := range note.FollowUps {
			items = append(items, FromTask(p, t, note))
		}
	}
	return items
}
