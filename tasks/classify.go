// ABOUTME: Temporal classification of task due dates against today
// ABOUTME: Overdue and due-today apply only to items not yet complete
package tasks

import "github.com/harperreed/schoolcrm/models"

type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyOverdue
	UrgencyDueToday
	UrgencyUpcoming
)

func (u Urgency) String() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencyDueToday:
		return "due today"
	case UrgencyUpcoming:
		return "upcoming"
	}
	return ""
}

// Classify compares the item's due date with today.
func Classify(it Item, today models.Date) Urgency {
	if it.Due == nil {
		return UrgencyNone
	}
	switch c := it.Due.Compare(today); {
	case c > 0:
		return UrgencyUpcoming
	case it.Completed:
		return UrgencyNone
	case c < 0:
		return UrgencyOverdue
	default:
		return UrgencyDueToday
	}
}

// Counts summarizes a list for badges and dashboards.
type Counts struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Overdue  int `json:"overdue"`
	DueToday int `json:"due_today"`
	Upcoming int `json:"upcoming"`
}

func Count(items []Item, today models.Date) Counts {
	c := Counts{Total: len(items)}
	for _, it := range items {
		if !it.Completed {
			c.Open++
		}
		switch Classify(it, today) {
		case UrgencyOverdue:
			c.Overdue++
		case UrgencyDueToday:
			c.DueToday++
		case UrgencyUpcoming:
			c.Upcoming++
		}
	}
	return c
}
