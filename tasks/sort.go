// ABOUTME: Stable orderings for merged task lists
// ABOUTME: Missing due dates always sort after present ones
package tasks

import (
	"slices"

	"github.com/harperreed/schoolcrm/models"
)

// SortDetail orders incomplete before complete, then by due date. Ties keep
// their existing order.
func SortDetail(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return compareDue(a.Due, b.Due)
	})
}

// SortGlobal orders by due date only. Ties keep their existing order.
func SortGlobal(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return compareDue(a.Due, b.Due)
	})
}

func compareDue(a, b *models.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
