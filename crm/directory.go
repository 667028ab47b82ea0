// ABOUTME: List and dashboard state across every partner
// ABOUTME: Creates and deletes partners with write-through local updates
package crm

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

// Directory holds every hydrated partner for list, task, and dashboard screens.
type Directory struct {
	store  Store
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	partners []models.Partner
	loaded   bool
}

func NewDirectory(parent context.Context, store Store) *Directory {
	ctx, cancel := context.WithCancel(parent)
	return &Directory{store: store, ctx: ctx, cancel: cancel}
}

// Close cancels outstanding requests; later results are dropped.
func (d *Directory) Close() {
	d.cancel()
}

// Refresh reloads every partner.
func (d *Directory) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.ctx, cancel)
	defer stop()

	partners, err := LoadPartners(ctx, d.store)
	if err != nil {
		if d.ctx.Err() != nil {
			return ErrViewClosed
		}
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx.Err() != nil {
		return ErrViewClosed
	}
	d.partners = partners
	d.loaded = true
	return nil
}

// Partners returns copies of the loaded partners in name order.
func (d *Directory) Partners() []models.Partner {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Partner, len(d.partners))
	for i := range d.partners {
		out[i] = *clonePartner(&d.partners[i])
	}
	return out
}

// Partner returns a copy of one loaded partner, or nil.
func (d *Directory) Partner(id uuid.UUID) *models.Partner {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.index(id); i >= 0 {
		return clonePartner(&d.partners[i])
	}
	return nil
}

// Tasks returns the global task list with f applied.
func (d *Directory) Tasks(f tasks.Filter) []tasks.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return tasks.Apply(tasks.Global(d.partners), f)
}

// CreatePartner validates in, stores the partner, and adds it to the list.
func (d *Directory) CreatePartner(ctx context.Context, in PartnerInput) (*models.Partner, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Check(in); err != nil {
		return nil, err
	}
	p := in.partner()
	if err := d.store.CreatePartner(ctx, p); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx.Err() == nil && d.loaded {
		d.partners = append(d.partners, *clonePartner(p))
		slices.SortStableFunc(d.partners, func(a, b models.Partner) int {
			return strings.Compare(a.Name, b.Name)
		})
	}
	return p, nil
}

// DeletePartner removes a partner and everything it owns.
func (d *Directory) DeletePartner(ctx context.Context, id uuid.UUID) error {
	if err := d.store.DeletePartner(ctx, id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx.Err() == nil {
		d.partners = slices.DeleteFunc(d.partners, func(p models.Partner) bool { return p.ID == id })
	}
	return nil
}

// SetTaskStatus writes a status change for a task in the global list and
// then reloads, so the list reflects the stored state either way.
func (d *Directory) SetTaskStatus(ctx context.Context, it tasks.Item, status string) error {
	if _, err := tasks.SetStatus(ctx, d.store, it, status); err != nil {
		return errors.Join(err, d.Refresh(ctx))
	}
	return d.Refresh(ctx)
}

func (d *Directory) index(id uuid.UUID) int {
	return slices.IndexFunc(d.partners, func(p models.Partner) bool { return p.ID == id })
}
