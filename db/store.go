// ABOUTME: Record store over SQLite for partners and their related rows
// ABOUTME: Shared select filtering, ordering, and partial update helpers
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidOrder = errors.New("invalid order column")
)

// Store provides select/insert/update/delete operations for every CRM table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ListOptions narrows a select. PartnerIDs is a membership filter on the
// owning partner (or on id for the partners table); empty means every row.
type ListOptions struct {
	PartnerIDs []uuid.UUID
	OrderBy    string
	Descending bool
}

// ForPartner is shorthand for a single-partner filter.
func ForPartner(id uuid.UUID) ListOptions {
	return ListOptions{PartnerIDs: []uuid.UUID{id}}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// selectQuery appends the membership filter and ordering to base.
func selectQuery(base, filterCol string, opts ListOptions, columns []string, defaultOrder string) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(base)

	var args []any
	if len(opts.PartnerIDs) > 0 {
		placeholders := make([]string, len(opts.PartnerIDs))
		for i, id := range opts.PartnerIDs {
			placeholders[i] = "?"
			args = append(args, id.String())
		}
		fmt.Fprintf(&sb, " WHERE %s IN (%s)", filterCol, strings.Join(placeholders, ", "))
	}

	order := defaultOrder
	if opts.OrderBy != "" {
		valid := false
		for _, c := range columns {
			if c == opts.OrderBy {
				valid = true
				break
			}
		}
		if !valid {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidOrder, opts.OrderBy)
		}
		order = opts.OrderBy
	}
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}
	// rowid keeps insertion order for ties
	fmt.Fprintf(&sb, " ORDER BY %s %s, rowid ASC", order, direction)

	return sb.String(), args, nil
}

// setList accumulates SET clauses for a partial update.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) str(col string, v *string) {
	if v != nil {
		s.add(col, *v)
	}
}

func (s *setList) num(col string, v *int) {
	if v != nil {
		s.add(col, *v)
	}
}

func (s *setList) date(col string, f *models.DateField) {
	if f != nil {
		s.add(col, models.DateArg(f.Date))
	}
}

func (s *setList) empty() bool {
	return len(s.cols) == 0
}

// exec runs the update against id, stamping updated_at when the table has it.
func (s *setList) exec(ctx context.Context, q execer, table string, id uuid.UUID, stamp bool) error {
	if stamp {
		s.add("updated_at", time.Now().UTC())
	}
	if s.empty() {
		return nil
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(s.cols, ", "))
	res, err := q.ExecContext(ctx, query, append(s.args, id.String())...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return requireAffected(res, table)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func requireAffected(res sql.Result, table string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireAffected(res, table)
}

func uuidArg(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
