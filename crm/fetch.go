// ABOUTME: Read path that loads partners with every related record
// ABOUTME: Fetches each table concurrently and joins the rows by foreign key
package crm

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"golang.org/x/sync/errgroup"
)

// LoadPartner returns one hydrated partner. A missing partner yields
// (nil, nil) so callers can tell it apart from a query failure.
func LoadPartner(ctx context.Context, s Store, id uuid.UUID) (*models.Partner, error) {
	var partner *models.Partner
	partners, err := load(ctx, s, db.ForPartner(id), func(ctx context.Context) ([]models.Partner, error) {
		p, err := s.GetPartner(ctx, id)
		if err != nil || p == nil {
			return nil, err
		}
		return []models.Partner{*p}, nil
	})
	if err != nil {
		return nil, err
	}
	if len(partners) == 1 {
		partner = &partners[0]
	}
	return partner, nil
}

// LoadPartners returns every partner, hydrated, ordered by name.
func LoadPartners(ctx context.Context, s Store) ([]models.Partner, error) {
	return load(ctx, s, db.ListOptions{}, func(ctx context.Context) ([]models.Partner, error) {
		return s.ListPartners(ctx, db.ListOptions{})
	})
}

type related struct {
	contacts    []models.Contact
	notes       []models.Note
	tasks       []models.FollowUpTask
	onboarding  []models.OnboardingTask
	dates       []models.ImportantDate
	attachments []models.Attachment
	schools     []models.School
}

func load(ctx context.Context, s Store, opts db.ListOptions, partnersFn func(context.Context) ([]models.Partner, error)) ([]models.Partner, error) {
	var partners []models.Partner
	var r related

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		partners, err = partnersFn(gctx)
		return wrap("partners", err)
	})
	g.Go(func() (err error) {
		r.contacts, err = s.ListContacts(gctx, opts)
		return wrap("contacts", err)
	})
	g.Go(func() (err error) {
		r.notes, err = s.ListNotes(gctx, opts)
		return wrap("notes", err)
	})
	g.Go(func() (err error) {
		r.tasks, err = s.ListTasks(gctx, opts)
		return wrap("tasks", err)
	})
	g.Go(func() (err error) {
		r.onboarding, err = s.ListOnboardingTasks(gctx, opts)
		return wrap("onboarding tasks", err)
	})
	g.Go(func() (err error) {
		r.dates, err = s.ListImportantDates(gctx, opts)
		return wrap("important dates", err)
	})
	g.Go(func() (err error) {
		r.attachments, err = s.ListAttachments(gctx, opts)
		return wrap("attachments", err)
	})
	g.Go(func() (err error) {
		r.schools, err = s.ListSchools(gctx, opts)
		return wrap("schools", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	join(partners, &r)
	log.Debug("loaded partners", "count", len(partners), "notes", len(r.notes), "tasks", len(r.tasks))
	return partners, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// join attaches related rows to their owning partner. Tasks with a note id
// land under that note; the rest are the partner's standalone tasks.
func join(partners []models.Partner, r *related) {
	byID := make(map[uuid.UUID]*models.Partner, len(partners))
	for i := range partners {
		byID[partners[i].ID] = &partners[i]
	}

	for _, c := range r.contacts {
		if p := byID[c.PartnerID]; p != nil {
			p.Contacts = append(p.Contacts, c)
		}
	}
	for _, n := range r.notes {
		if p := byID[n.PartnerID]; p != nil {
			p.Notes = append(p.Notes, n)
		}
	}

	type noteRef struct {
		partner *models.Partner
		index   int
	}
	notes := make(map[uuid.UUID]noteRef, len(r.notes))
	for _, p := range byID {
		for i := range p.Notes {
			notes[p.Notes[i].ID] = noteRef{partner: p, index: i}
		}
	}
	for _, t := range r.tasks {
		if t.NoteID != nil {
			if ref, ok := notes[*t.NoteID]; ok {
				n := &ref.partner.Notes[ref.index]
				n.FollowUps = append(n.FollowUps, t)
			}
			continue
		}
		if p := byID[t.PartnerID]; p != nil {
			p.Tasks = append(p.Tasks, t)
		}
	}

	for _, o := range r.onboarding {
		if p := byID[o.PartnerID]; p != nil {
			p.Onboarding = append(p.Onboarding, o)
		}
	}
	for _, d := range r.dates {
		if p := byID[d.PartnerID]; p != nil {
			p.ImportantDates = append(p.ImportantDates, d)
		}
	}
	for _, a := range r.attachments {
		if p := byID[a.PartnerID]; p != nil {
			p.Attachments = append(p.Attachments, a)
		}
	}
	for _, sc := range r.schools {
		if sc.PartnerID == nil {
			continue
		}
		if p := byID[*sc.PartnerID]; p != nil {
			p.Schools = append(p.Schools, sc)
		}
	}
}
