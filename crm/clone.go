// ABOUTME: Deep copies of hydrated partners
// ABOUTME: Lets views hand out snapshots without sharing slices with callers
package crm

import "github.com/harperreed/schoolcrm/models"

func clonePartner(p *models.Partner) *models.Partner {
	if p == nil {
		return nil
	}
	c := *p
	c.PainPoints = append([]string(nil), p.PainPoints...)
	c.LastContact = cloneDate(p.LastContact)
	c.NextFollowUp = cloneDate(p.NextFollowUp)
	c.ProposalDeadline = cloneDate(p.ProposalDeadline)
	c.ContractStart = cloneDate(p.ContractStart)
	c.ContractEnd = cloneDate(p.ContractEnd)
	c.Contacts = append([]models.Contact(nil), p.Contacts...)
	c.Tasks = append([]models.FollowUpTask(nil), p.Tasks...)
	c.Onboarding = append([]models.OnboardingTask(nil), p.Onboarding...)
	c.ImportantDates = append([]models.ImportantDate(nil), p.ImportantDates...)
	c.Attachments = append([]models.Attachment(nil), p.Attachments...)
	c.Schools = append([]models.School(nil), p.Schools...)
	c.Notes = make([]models.Note, len(p.Notes))
	for i, n := range p.Notes {
		n.FollowUps = append([]models.FollowUpTask(nil), n.FollowUps...)
		c.Notes[i] = n
	}
	if p.Notes == nil {
		c.Notes = nil
	}
	return &c
}

func cloneDate(d *models.Date) *models.Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
