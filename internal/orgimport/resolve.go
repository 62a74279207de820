package orgimport

// resolve.go maps validated candidate records onto Department, Position, and
// Employee aggregates. Departments are materialized top-down from their coded
// identifiers, positions are created per distinct (title, department) pair,
// and both are looked up in the run's working set before the repository so a
// single run never creates the same entity twice.

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/staffdir/orgimport/internal/org"
)

// workingSet is the run-scoped index of entities already resolved in this
// import call. It is created per run and discarded at the end; there is no
// process-wide state.
type workingSet struct {
	departments map[string]*org.Department // by code
	positions   map[string]*org.Position   // by title + department id
	employees   map[string]*org.Employee   // by tab number
}

func newWorkingSet() *workingSet {
	return &workingSet{
		departments: make(map[string]*org.Department),
		positions:   make(map[string]*org.Position),
		employees:   make(map[string]*org.Employee),
	}
}

func positionKey(title string, departmentID uuid.UUID) string {
	return title + "\x00" + departmentID.String()
}

// resolution is the outcome of resolving one record. Created entities are
// staged here and promoted into the working set only after the record's
// persistence succeeds, so a rolled-back record leaves no trace.
type resolution struct {
	departments []*org.Department // newly created, in top-down order
	position    *org.Position     // newly created, nil if reused
	employee    *org.Employee
	updated     bool // employee existed in storage and was updated in place
}

func (r *resolution) promote(ws *workingSet) {
	for _, d := range r.departments {
		ws.departments[d.Code.String()] = d
	}
	if r.position != nil {
		ws.positions[positionKey(r.position.Title, r.position.DepartmentID)] = r.position
	}
	ws.employees[r.employee.TabNumber.String()] = r.employee
}

// resolveRecord resolves and persists one candidate record against the given
// store. A *RowError return means the record failed on a referential issue;
// any other error is an infrastructure failure.
func resolveRecord(ctx context.Context, store org.Store, ws *workingSet, rec CandidateRecord) (*resolution, error) {
	res := &resolution{}

	dept, err := resolveDepartment(ctx, store, ws, res, rec.DepartmentCode, rec.DepartmentName)
	if err != nil {
		return nil, err
	}

	pos, err := resolvePosition(ctx, store, ws, res, rec.PositionTitle, dept.ID)
	if err != nil {
		return nil, err
	}

	var managerID *uuid.UUID
	if rec.ManagerTab != "" {
		managerID, err = resolveManager(ctx, store, ws, rec)
		if err != nil {
			return nil, err
		}
	}

	existing, err := store.Employees().FindByTabNumber(ctx, rec.TabNumber)
	switch {
	case err == nil:
		// Merge mode re-import: update the existing aggregate in place.
		existing.Info = rec.Info
		existing.DepartmentID = dept.ID
		existing.PositionID = pos.ID
		existing.ManagerID = managerID
		res.employee = existing
		res.updated = true
	case errors.Is(err, org.ErrNotFound):
		res.employee = org.NewEmployee(rec.TabNumber, rec.Info, dept.ID, pos.ID, managerID)
	default:
		return nil, fmt.Errorf("find employee %s: %w", rec.TabNumber, err)
	}

	if err := store.Employees().Save(ctx, res.employee); err != nil {
		return nil, fmt.Errorf("save employee %s: %w", rec.TabNumber, err)
	}

	return res, nil
}

// resolveDepartment returns the department for code, creating it and any
// missing ancestors top-down. Newly created departments are staged on res.
func resolveDepartment(ctx context.Context, store org.Store, ws *workingSet, res *resolution, code org.DepartmentCode, name string) (*org.Department, error) {
	if d, ok := ws.departments[code.String()]; ok {
		return d, nil
	}
	for _, d := range res.departments {
		if d.Code.Equal(code) {
			return d, nil
		}
	}

	d, err := store.Departments().FindByCode(ctx, code)
	if err == nil {
		// Found in storage: durable regardless of this record's outcome,
		// safe to cache for the rest of the run.
		ws.departments[code.String()] = d
		return d, nil
	}
	if !errors.Is(err, org.ErrNotFound) {
		return nil, fmt.Errorf("find department %s: %w", code, err)
	}

	var parentID *uuid.UUID
	if parentCode, ok := code.Parent(); ok {
		// Ancestors carry their code as name until a row names them.
		parent, err := resolveDepartment(ctx, store, ws, res, parentCode, parentCode.String())
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	d = org.NewDepartment(code, name, parentID)
	if err := store.Departments().Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save department %s: %w", code, err)
	}

	res.departments = append(res.departments, d)
	return d, nil
}

// resolvePosition returns the position for (title, department), creating it
// when absent.
func resolvePosition(ctx context.Context, store org.Store, ws *workingSet, res *resolution, title string, departmentID uuid.UUID) (*org.Position, error) {
	key := positionKey(title, departmentID)
	if p, ok := ws.positions[key]; ok {
		return p, nil
	}

	p, err := store.Positions().FindByTitleAndDepartment(ctx, title, departmentID)
	if err == nil {
		ws.positions[key] = p
		return p, nil
	}
	if !errors.Is(err, org.ErrNotFound) {
		return nil, fmt.Errorf("find position %q: %w", title, err)
	}

	p = org.NewPosition(title, departmentID)
	if err := store.Positions().Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save position %q: %w", title, err)
	}

	res.position = p
	return p, nil
}

// resolveManager looks up the manager's id among already-resolved employees,
// then in storage. An unresolvable non-blank reference is a row error, not a
// fatal abort: the batch-local validator cannot see every referential issue.
func resolveManager(ctx context.Context, store org.Store, ws *workingSet, rec CandidateRecord) (*uuid.UUID, error) {
	if m, ok := ws.employees[rec.ManagerTab]; ok {
		return &m.ID, nil
	}

	tab, err := org.NewTabNumber(rec.ManagerTab)
	if err != nil {
		return nil, &RowError{Row: rec.Row, Message: fmt.Sprintf("invalid manager reference %q: %v", rec.ManagerTab, err)}
	}

	m, err := store.Employees().FindByTabNumber(ctx, tab)
	if err == nil {
		return &m.ID, nil
	}
	if errors.Is(err, org.ErrNotFound) {
		return nil, &RowError{Row: rec.Row, Message: fmt.Sprintf("manager with tab number %q not found", rec.ManagerTab)}
	}
	return nil, fmt.Errorf("find manager %s: %w", tab, err)
}

// orderForResolution sorts records so that every batch-internal manager comes
// before their reports, allowing manager ids to resolve in a single pass.
// The manager graph is acyclic here (the validator rejected cycles), so the
// depth of each record's manager chain within the batch is well-defined.
// Ties keep original row order.
func orderForResolution(records []CandidateRecord) []CandidateRecord {
	byTab := make(map[string]int, len(records))
	for i, rec := range records {
		byTab[rec.TabNumber.String()] = i
	}

	depths := make([]int, len(records))
	var depthOf func(i int) int
	depthOf = func(i int) int {
		if depths[i] != 0 {
			return depths[i]
		}
		depths[i] = 1 // guards against re-walking shared chains
		if mi, ok := byTab[records[i].ManagerTab]; ok && mi != i {
			depths[i] = depthOf(mi) + 1
		}
		return depths[i]
	}
	for i := range records {
		depthOf(i)
	}

	ordered := make([]CandidateRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(a, b int) bool {
		return depths[byTab[ordered[a].TabNumber.String()]] < depths[byTab[ordered[b].TabNumber.String()]]
	})
	return ordered
}
