// Package orgtest provides an in-memory implementation of the org storage
// contracts for tests. WithinTx emulates transactional rollback by
// snapshotting the maps before the callback and restoring them on error.
package orgtest

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/staffdir/orgimport/internal/org"
)

// MemStore is an in-memory org.UnitOfWork. The zero value is not usable;
// call NewMemStore.
type MemStore struct {
	mu          sync.Mutex
	employees   map[string]*org.Employee   // by tab number
	departments map[string]*org.Department // by code
	positions   map[string]*org.Position   // by title + department id

	// SaveEmployeeErr, when set, is consulted on every employee save and
	// lets tests inject persistence failures for specific aggregates.
	SaveEmployeeErr func(e *org.Employee) error
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		employees:   make(map[string]*org.Employee),
		departments: make(map[string]*org.Department),
		positions:   make(map[string]*org.Position),
	}
}

func (s *MemStore) Employees() org.EmployeeRepository     { return employeeRepo{s} }
func (s *MemStore) Departments() org.DepartmentRepository { return departmentRepo{s} }
func (s *MemStore) Positions() org.PositionRepository     { return positionRepo{s} }

// WithinTx snapshots all three collections, runs fn against the store, and
// restores the snapshot when fn fails.
func (s *MemStore) WithinTx(ctx context.Context, fn func(org.Store) error) error {
	s.mu.Lock()
	employees := cloneEmployees(s.employees)
	departments := cloneDepartments(s.departments)
	positions := clonePositions(s.positions)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.employees = employees
		s.departments = departments
		s.positions = positions
		s.mu.Unlock()
		return err
	}
	return nil
}

// CountEmployees returns the number of stored employees.
func (s *MemStore) CountEmployees() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.employees)
}

// CountDepartments returns the number of stored departments.
func (s *MemStore) CountDepartments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.departments)
}

// CountPositions returns the number of stored positions.
func (s *MemStore) CountPositions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

type employeeRepo struct{ s *MemStore }

func (r employeeRepo) FindByTabNumber(_ context.Context, tab org.TabNumber) (*org.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.employees[tab.String()]; ok {
		return e, nil
	}
	return nil, org.ErrNotFound
}

func (r employeeRepo) Save(_ context.Context, e *org.Employee) error {
	if r.s.SaveEmployeeErr != nil {
		if err := r.s.SaveEmployeeErr(e); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.employees[e.TabNumber.String()] = e
	return nil
}

func (r employeeRepo) FindAll(_ context.Context) ([]*org.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*org.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TabNumber.String() < all[j].TabNumber.String() })
	return all, nil
}

func (r employeeRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.employees = make(map[string]*org.Employee)
	return nil
}

type departmentRepo struct{ s *MemStore }

func (r departmentRepo) FindByCode(_ context.Context, code org.DepartmentCode) (*org.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.departments[code.String()]; ok {
		return d, nil
	}
	return nil, org.ErrNotFound
}

func (r departmentRepo) FindByID(_ context.Context, id uuid.UUID) (*org.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, org.ErrNotFound
}

func (r departmentRepo) Save(_ context.Context, d *org.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.departments[d.Code.String()] = d
	return nil
}

func (r departmentRepo) FindAll(_ context.Context) ([]*org.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*org.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code.String() < all[j].Code.String() })
	return all, nil
}

func (r departmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for code, d := range r.s.departments {
		if d.ID == id {
			delete(r.s.departments, code)
			return nil
		}
	}
	return org.ErrNotFound
}

func (r departmentRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.departments = make(map[string]*org.Department)
	return nil
}

type positionRepo struct{ s *MemStore }

func (r positionRepo) FindByTitleAndDepartment(_ context.Context, title string, departmentID uuid.UUID) (*org.Position, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.positions[positionKey(title, departmentID)]; ok {
		return p, nil
	}
	return nil, org.ErrNotFound
}

func (r positionRepo) Save(_ context.Context, p *org.Position) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.positions[positionKey(p.Title, p.DepartmentID)] = p
	return nil
}

func (r positionRepo) FindAll(_ context.Context) ([]*org.Position, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*org.Position, 0, len(r.s.positions))
	for _, p := range r.s.positions {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Title != all[j].Title {
			return all[i].Title < all[j].Title
		}
		return all[i].DepartmentID.String() < all[j].DepartmentID.String()
	})
	return all, nil
}

func (r positionRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.positions = make(map[string]*org.Position)
	return nil
}

func positionKey(title string, departmentID uuid.UUID) string {
	return title + "\x00" + departmentID.String()
}

func cloneEmployees(in map[string]*org.Employee) map[string]*org.Employee {
	out := make(map[string]*org.Employee, len(in))
	for k, e := range in {
		c := *e
		if e.ManagerID != nil {
			id := *e.ManagerID
			c.ManagerID = &id
		}
		out[k] = &c
	}
	return out
}

func cloneDepartments(in map[string]*org.Department) map[string]*org.Department {
	out := make(map[string]*org.Department, len(in))
	for k, d := range in {
		c := *d
		if d.ParentID != nil {
			id := *d.ParentID
			c.ParentID = &id
		}
		out[k] = &c
	}
	return out
}

func clonePositions(in map[string]*org.Position) map[string]*org.Position {
	out := make(map[string]*org.Position, len(in))
	for k, p := range in {
		c := *p
		out[k] = &c
	}
	return out
}
