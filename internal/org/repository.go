package org

import (
	"context"

	"github.com/google/uuid"
)

// EmployeeRepository persists Employee aggregates.
// FindByTabNumber returns ErrNotFound when no employee matches.
type EmployeeRepository interface {
	FindByTabNumber(ctx context.Context, tab TabNumber) (*Employee, error)
	Save(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context) ([]*Employee, error)
	DeleteAll(ctx context.Context) error
}

// DepartmentRepository persists Department aggregates keyed by DepartmentCode.
type DepartmentRepository interface {
	FindByCode(ctx context.Context, code DepartmentCode) (*Department, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Department, error)
	Save(ctx context.Context, d *Department) error
	FindAll(ctx context.Context) ([]*Department, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

// PositionRepository persists Position aggregates keyed by (title, department).
type PositionRepository interface {
	FindByTitleAndDepartment(ctx context.Context, title string, departmentID uuid.UUID) (*Position, error)
	Save(ctx context.Context, p *Position) error
	FindAll(ctx context.Context) ([]*Position, error)
	DeleteAll(ctx context.Context) error
}

// Store groups the three repositories, either pool-backed or bound to one
// transaction.
type Store interface {
	Employees() EmployeeRepository
	Departments() DepartmentRepository
	Positions() PositionRepository
}

// UnitOfWork is a Store that can run a function inside a single transaction
// spanning all three repositories. WithinTx commits when fn returns nil and
// rolls back every write otherwise.
type UnitOfWork interface {
	Store
	WithinTx(ctx context.Context, fn func(Store) error) error
}
