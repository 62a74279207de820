// Package postgres implements the org storage contracts on PostgreSQL via
// pgx. A Store bound to the pool serves plain queries; WithinTx rebinds the
// repositories to one transaction so an import run commits or rolls back as
// a unit.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staffdir/orgimport/internal/org"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// TxBeginner starts transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements org.UnitOfWork on top of a pgx pool.
type Store struct {
	pool TxBeginner
	db   DBTX
}

// NewStore creates a pool-bound store.
func NewStore(pool TxBeginner) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Employees() org.EmployeeRepository     { return &EmployeeRepository{db: s.db} }
func (s *Store) Departments() org.DepartmentRepository { return &DepartmentRepository{db: s.db} }
func (s *Store) Positions() org.PositionRepository     { return &PositionRepository{db: s.db} }

// WithinTx runs fn against a store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(org.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// translateError maps low-level pgx errors onto the org sentinels so callers
// can branch with errors.Is without importing pgx.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return org.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case "employees_tab_number_key":
			return fmt.Errorf("%w: %s", org.ErrDuplicateTabNumber, pgErr.Detail)
		case "departments_code_key":
			return fmt.Errorf("%w: %s", org.ErrDuplicateCode, pgErr.Detail)
		}
	}
	return err
}
