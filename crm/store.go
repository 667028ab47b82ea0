// ABOUTME: Record store contract consumed by the data access layer
// ABOUTME: Implemented by db.Store; test doubles wrap it to inject failures
package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
)

// Store is every record operation the views need.
type Store interface {
	GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	ListPartners(ctx context.Context, opts db.ListOptions) ([]models.Partner, error)
	CreatePartner(ctx context.Context, p *models.Partner) error
	UpdatePartner(ctx context.Context, id uuid.UUID, patch models.PartnerPatch) error
	DeletePartner(ctx context.Context, id uuid.UUID) error

	ListContacts(ctx context.Context, opts db.ListOptions) ([]models.Contact, error)
	CreateContact(ctx context.Context, c *models.Contact) error
	UpdateContact(ctx context.Context, id uuid.UUID, patch models.ContactPatch) error
	DeleteContact(ctx context.Context, id uuid.UUID) error
	SetPrimaryContact(ctx context.Context, id uuid.UUID) error

	ListNotes(ctx context.Context, opts db.ListOptions) ([]models.Note, error)
	CreateNote(ctx context.Context, n *models.Note, followUp *models.FollowUpTask) error
	UpdateNote(ctx context.Context, id uuid.UUID, patch models.NotePatch) error
	DeleteNote(ctx context.Context, id uuid.UUID) error

	ListTasks(ctx context.Context, opts db.ListOptions) ([]models.FollowUpTask, error)
	CreateTask(ctx context.Context, t *models.FollowUpTask) error
	UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) error
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	ListOnboardingTasks(ctx context.Context, opts db.ListOptions) ([]models.OnboardingTask, error)
	CreateOnboardingTask(ctx context.Context, t *models.OnboardingTask) error
	UpdateOnboardingTask(ctx context.Context, id uuid.UUID, patch models.OnboardingPatch) error

	ListImportantDates(ctx context.Context, opts db.ListOptions) ([]models.ImportantDate, error)
	CreateImportantDate(ctx context.Context, d *models.ImportantDate) error
	UpdateImportantDate(ctx context.Context, id uuid.UUID, patch models.ImportantDatePatch) error
	DeleteImportantDate(ctx context.Context, id uuid.UUID) error

	ListAttachments(ctx context.Context, opts db.ListOptions) ([]models.Attachment, error)
	CreateAttachment(ctx context.Context, a *models.Attachment) error
	DeleteAttachment(ctx context.Context, id uuid.UUID) error

	ListSchools(ctx context.Context, opts db.ListOptions) ([]models.School, error)
	CreateSchool(ctx context.Context, s *models.School) error
}

var _ Store = (*db.Store)(nil)
