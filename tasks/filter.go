// ABOUTME: Composable filters for the global task list
// ABOUTME: Search, status, kind, partner, and owner criteria combine with AND
package tasks

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// FilterActive matches every status except Complete.
	FilterActive = "active"
	// FilterAll disables a criterion.
	FilterAll = "all"
)

// Filter narrows a task list. Empty fields take their defaults: Status is
// "active", every other criterion is "all".
type Filter struct {
	Search  string `query:"search" json:"search,omitempty"`
	Status  string `query:"status" json:"status,omitempty"`
	Type    string `query:"type" json:"type,omitempty"`
	Partner string `query:"partner" json:"partner,omitempty"`
	Owner   string `query:"owner" json:"owner,omitempty"`
}

// Match reports whether it passes every criterion.
func (f Filter) Match(it Item) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(it.Title), needle) &&
			!strings.Contains(strings.ToLower(it.PartnerName), needle) {
			return false
		}
	}

	switch f.Status {
	case "", FilterActive:
		if it.Completed {
			return false
		}
	case FilterAll:
	default:
		if it.Status != f.Status {
			return false
		}
	}

	if f.Type != "" && f.Type != FilterAll && string(it.Kind) != f.Type {
		return false
	}

	if f.Partner != "" && f.Partner != FilterAll {
		id, err := uuid.Parse(f.Partner)
		if err != nil || id != it.PartnerID {
			return false
		}
	}

	if f.Owner != "" && f.Owner != FilterAll && !strings.EqualFold(f.Owner, it.Owner) {
		return false
	}

	return true
}

// Apply returns the items that match, preserving order.
func Apply(items []Item, f Filter) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
