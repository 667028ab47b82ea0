// ABOUTME: Next-action resolution for a partner
// ABOUTME: Calendar meeting, then follow-up date, then proposal deadline
package calendar

import (
	"fmt"

	"github.com/harperreed/schoolcrm/models"
)

type ActionKind string

const (
	ActionNone     ActionKind = "none"
	ActionMeeting  ActionKind = "meeting"
	ActionFollowUp ActionKind = "follow_up"
	ActionDeadline ActionKind = "proposal_deadline"
)

// NextAction is the single most relevant upcoming item for a partner.
type NextAction struct {
	Kind    ActionKind   `json:"kind"`
	Label   string       `json:"label"`
	Date    *models.Date `json:"date,omitempty"`
	Meeting *Meeting     `json:"meeting,omitempty"`
}

// ResolveNextAction applies the fixed precedence: a resolved meeting wins
// over the partner's follow-up date, which wins over the proposal deadline.
func ResolveNextAction(p *models.Partner, meeting *Meeting) NextAction {
	switch {
	case meeting != nil:
		return NextAction{Kind: ActionMeeting, Label: "Meeting: " + meeting.Summary, Meeting: meeting}
	case p.NextFollowUp != nil:
		d := *p.NextFollowUp
		return NextAction{Kind: ActionFollowUp, Label: "Follow up", Date: &d}
	case p.ProposalDeadline != nil:
		d := *p.ProposalDeadline
		return NextAction{Kind: ActionDeadline, Label: "Proposal due", Date: &d}
	}
	return NextAction{Kind: ActionNone, Label: "No next action"}
}

func (a NextAction) String() string {
	switch {
	case a.Meeting != nil:
		if a.Meeting.StartTime.IsZero() {
			return a.Label
		}
		return fmt.Sprintf("%s (%s)", a.Label, a.Meeting.StartTime.Local().Format("Jan 2 3:04 PM"))
	case a.Date != nil:
		return fmt.Sprintf("%s %s", a.Label, a.Date)
	}
	return a.Label
}

// PartnerEmails maps partner ids to their contacts' email addresses,
// leaving out partners without any.
func PartnerEmails(partners []models.Partner) map[string][]string {
	out := make(map[string][]string, len(partners))
	for i := range partners {
		if emails := partners[i].ContactEmails(); len(emails) > 0 {
			out[partners[i].ID.String()] = emails
		}
	}
	return out
}
