package org

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Service exposes read-side queries and guarded deletions over the org graph.
// It holds no state between calls; everything is computed from the repositories.
type Service struct {
	store Store
}

// NewService constructs the service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// TreeNode is a department with its resolved children, sorted by code.
type TreeNode struct {
	Department *Department `json:"department"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// DepartmentTree builds the full department hierarchy from storage.
// Departments whose parent is missing are treated as roots.
func (s *Service) DepartmentTree(ctx context.Context) ([]*TreeNode, error) {
	departments, err := s.store.Departments().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}

	nodes := make(map[uuid.UUID]*TreeNode, len(departments))
	for _, d := range departments {
		nodes[d.ID] = &TreeNode{Department: d}
	}

	var roots []*TreeNode
	for _, d := range departments {
		node := nodes[d.ID]
		if d.ParentID != nil {
			if parent, ok := nodes[*d.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	return roots, nil
}

func sortNodes(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Department.Code.String() < nodes[j].Department.Code.String()
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// DepartmentPath returns the root-to-node chain for a department.
func (s *Service) DepartmentPath(ctx context.Context, id uuid.UUID) ([]*Department, error) {
	var path []*Department
	current, err := s.store.Departments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for current != nil {
		path = append([]*Department{current}, path...)
		if current.ParentID == nil {
			break
		}
		current, err = s.store.Departments().FindByID(ctx, *current.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent department: %w", err)
		}
	}
	return path, nil
}

// SearchEmployees returns employees whose name, tab number, or email contains
// the query, case-insensitively. An empty query returns all employees.
func (s *Service) SearchEmployees(ctx context.Context, query string) ([]*Employee, error) {
	employees, err := s.store.Employees().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return employees, nil
	}

	var matched []*Employee
	for _, e := range employees {
		if strings.Contains(strings.ToLower(e.Info.FullName), q) ||
			strings.Contains(strings.ToLower(e.TabNumber.String()), q) ||
			strings.Contains(strings.ToLower(e.Info.Email), q) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Stats summarizes the org graph for dashboards.
type Stats struct {
	TotalDepartments int         `json:"totalDepartments"`
	TotalEmployees   int         `json:"totalEmployees"`
	TotalPositions   int         `json:"totalPositions"`
	ByLevel          map[int]int `json:"departmentsByLevel"`
}

// Stats counts departments, employees, and positions, and groups departments
// by their code-derived level.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	departments, err := s.store.Departments().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	employees, err := s.store.Employees().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	positions, err := s.store.Positions().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}

	stats := &Stats{
		TotalDepartments: len(departments),
		TotalEmployees:   len(employees),
		TotalPositions:   len(positions),
		ByLevel:          make(map[int]int),
	}
	for _, d := range departments {
		stats.ByLevel[d.Code.Level()]++
	}
	return stats, nil
}

// DeleteDepartment removes an empty leaf department. It refuses to delete a
// department that still has child departments or employees.
func (s *Service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	dept, err := s.store.Departments().FindByID(ctx, id)
	if err != nil {
		return err
	}

	departments, err := s.store.Departments().FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load departments: %w", err)
	}
	for _, d := range departments {
		if d.ParentID != nil && *d.ParentID == dept.ID {
			return fmt.Errorf("department %s: %w", dept.Code, ErrDepartmentHasChildren)
		}
	}

	employees, err := s.store.Employees().FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load employees: %w", err)
	}
	for _, e := range employees {
		if e.DepartmentID == dept.ID {
			return fmt.Errorf("department %s: %w", dept.Code, ErrDepartmentHasEmployees)
		}
	}

	return s.store.Departments().Delete(ctx, dept.ID)
}
