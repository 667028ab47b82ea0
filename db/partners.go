// ABOUTME: Partner database operations
// ABOUTME: Handles partner CRUD, name search, and onboarding checklist seeding on create
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

const partnerColumns = `id, name, status, lead_source, onboarding_step, partnership_health, renewal_status,
	priority, student_count, staff_count, school_count, district, address, city, state, time_zone,
	school_type, summary, pain_points, last_contact, next_follow_up, proposal_deadline, contract_value,
	contract_start, contract_end, staff_lead, created_at, updated_at`

var partnerOrderColumns = []string{"name", "status", "priority", "created_at", "updated_at", "next_follow_up", "proposal_deadline", "contract_value"}

// CreatePartner inserts p and seeds its canonical onboarding checklist in one
// transaction. p receives its generated id, defaults, and checklist rows.
func (s *Store) CreatePartner(ctx context.Context, p *models.Partner) error {
	p.ApplyDefaults()
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	painPoints, err := marshalPainPoints(p.PainPoints)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO partners (`+partnerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID.String(), p.Name, p.Status, p.LeadSource, p.OnboardingStep, p.PartnershipHealth, p.RenewalStatus,
		p.Priority, p.StudentCount, p.StaffCount, p.SchoolCount, p.District, p.Address, p.City, p.State, p.TimeZone,
		p.SchoolType, p.Summary, painPoints, models.DateArg(p.LastContact), models.DateArg(p.NextFollowUp),
		models.DateArg(p.ProposalDeadline), p.ContractValue, models.DateArg(p.ContractStart),
		models.DateArg(p.ContractEnd), p.StaffLead, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert partner: %w", err)
	}

	checklist, err := seedOnboarding(ctx, tx, p.ID, now)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit partner: %w", err)
	}
	p.Onboarding = checklist
	return nil
}

// GetPartner returns the partner row without related records, or nil when
// no partner has that id.
func (s *Store) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = ?`, id.String())
	p, err := scanPartner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return p, nil
}

// ListPartners returns partner rows, ordered by name unless opts says otherwise.
func (s *Store) ListPartners(ctx context.Context, opts ListOptions) ([]models.Partner, error) {
	query, args, err := selectQuery(`SELECT `+partnerColumns+` FROM partners`, "id", opts, partnerOrderColumns, "name")
	if err != nil {
		return nil, err
	}
	return s.queryPartners(ctx, query, args...)
}

// FindPartners searches by case-insensitive name or district substring and
// optional exact status.
func (s *Store) FindPartners(ctx context.Context, query, status string, limit int) ([]models.Partner, error) {
	if limit <= 0 {
		limit = 50
	}

	var where []string
	var args []any
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(district) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}

	sqlQuery := `SELECT ` + partnerColumns + ` FROM partners`
	if len(where) > 0 {
		sqlQuery += " WHERE " + strings.Join(where, " AND ")
	}
	sqlQuery += " ORDER BY name ASC LIMIT ?"
	args = append(args, limit)

	return s.queryPartners(ctx, sqlQuery, args...)
}

func (s *Store) queryPartners(ctx context.Context, query string, args ...any) ([]models.Partner, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

// UpdatePartner applies a partial patch. Status changes leave the
// status-specific fields in place.
func (s *Store) UpdatePartner(ctx context.Context, id uuid.UUID, patch models.PartnerPatch) error {
	var set setList
	set.str("name", patch.Name)
	set.str("status", patch.Status)
	set.str("lead_source", patch.LeadSource)
	set.str("onboarding_step", patch.OnboardingStep)
	set.str("partnership_health", patch.PartnershipHealth)
	set.str("renewal_status", patch.RenewalStatus)
	set.str("priority", patch.Priority)
	set.num("student_count", patch.StudentCount)
	set.num("staff_count", patch.StaffCount)
	set.num("school_count", patch.SchoolCount)
	set.str("district", patch.District)
	set.str("address", patch.Address)
	set.str("city", patch.City)
	set.str("state", patch.State)
	set.str("time_zone", patch.TimeZone)
	set.str("school_type", patch.SchoolType)
	set.str("summary", patch.Summary)
	if patch.PainPoints != nil {
		painPoints, err := marshalPainPoints(*patch.PainPoints)
		if err != nil {
			return err
		}
		set.add("pain_points", painPoints)
	}
	set.date("last_contact", patch.LastContact)
	set.date("next_follow_up", patch.NextFollowUp)
	set.date("proposal_deadline", patch.ProposalDeadline)
	if patch.ContractValue != nil {
		set.add("contract_value", *patch.ContractValue)
	}
	set.date("contract_start", patch.ContractStart)
	set.date("contract_end", patch.ContractEnd)
	set.str("staff_lead", patch.StaffLead)

	if set.empty() {
		return nil
	}
	return set.exec(ctx, s.db, "partners", id, true)
}

// DeletePartner removes the partner; child rows cascade.
func (s *Store) DeletePartner(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, "partners", id)
}

func scanPartner(row rowScanner) (*models.Partner, error) {
	var p models.Partner
	var painPoints string
	var lastContact, nextFollowUp, proposalDeadline, contractStart, contractEnd models.NullDate

	err := row.Scan(
		&p.ID, &p.Name, &p.Status, &p.LeadSource, &p.OnboardingStep, &p.PartnershipHealth, &p.RenewalStatus,
		&p.Priority, &p.StudentCount, &p.StaffCount, &p.SchoolCount, &p.District, &p.Address, &p.City, &p.State,
		&p.TimeZone, &p.SchoolType, &p.Summary, &painPoints, &lastContact, &nextFollowUp, &proposalDeadline,
		&p.ContractValue, &contractStart, &contractEnd, &p.StaffLead, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if painPoints != "" {
		if err := json.Unmarshal([]byte(painPoints), &p.PainPoints); err != nil {
			return nil, fmt.Errorf("failed to decode pain points: %w", err)
		}
	}
	p.LastContact = lastContact.Ptr()
	p.NextFollowUp = nextFollowUp.Ptr()
	p.ProposalDeadline = proposalDeadline.Ptr()
	p.ContractStart = contractStart.Ptr()
	p.ContractEnd = contractEnd.Ptr()

	return &p, nil
}

func marshalPainPoints(points []string) (string, error) {
	if points == nil {
		points = []string{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("failed to encode pain points: %w", err)
	}
	return string(data), nil
}
