package org_test

import (
	"context"
	"errors"
	"testing"

	"github.com/staffdir/orgimport/internal/org"
	"github.com/staffdir/orgimport/internal/orgtest"
)

// seedTree stores ROOT -> {ROOT.1, ROOT.2 -> ROOT.2.1} plus one position and
// two employees in ROOT.2.1.
func seedTree(t *testing.T, store *orgtest.MemStore) map[string]*org.Department {
	t.Helper()
	ctx := context.Background()

	depts := make(map[string]*org.Department)
	for _, spec := range []struct{ code, name, parent string }{
		{"ROOT", "Head Office", ""},
		{"ROOT.1", "Finance", "ROOT"},
		{"ROOT.2", "Engineering", "ROOT"},
		{"ROOT.2.1", "Platform", "ROOT.2"},
	} {
		code, err := org.NewDepartmentCode(spec.code)
		if err != nil {
			t.Fatal(err)
		}
		d := org.NewDepartment(code, spec.name, nil)
		if parent, ok := depts[spec.parent]; ok {
			id := parent.ID
			d.ParentID = &id
		}
		if err := store.Departments().Save(ctx, d); err != nil {
			t.Fatal(err)
		}
		depts[spec.code] = d
	}

	pos := org.NewPosition("Engineer", depts["ROOT.2.1"].ID)
	if err := store.Positions().Save(ctx, pos); err != nil {
		t.Fatal(err)
	}

	for _, e := range []struct{ tab, name, email string }{
		{"T001", "Alice Root", "alice@example.com"},
		{"T002", "Bob Smith", "bob@example.com"},
	} {
		tab, err := org.NewTabNumber(e.tab)
		if err != nil {
			t.Fatal(err)
		}
		info, err := org.NewPersonalInfo(e.name, e.email, "5550100001")
		if err != nil {
			t.Fatal(err)
		}
		emp := org.NewEmployee(tab, info, depts["ROOT.2.1"].ID, pos.ID, nil)
		if err := store.Employees().Save(ctx, emp); err != nil {
			t.Fatal(err)
		}
	}

	return depts
}

func TestDepartmentTree(t *testing.T) {
	store := orgtest.NewMemStore()
	seedTree(t, store)
	svc := org.NewService(store)

	roots, err := svc.DepartmentTree(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	root := roots[0]
	if root.Department.Code.String() != "ROOT" {
		t.Fatalf("root = %s, want ROOT", root.Department.Code)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	// Children sorted by code.
	if got := root.Children[0].Department.Code.String(); got != "ROOT.1" {
		t.Errorf("first child = %s, want ROOT.1", got)
	}
	eng := root.Children[1]
	if len(eng.Children) != 1 || eng.Children[0].Department.Code.String() != "ROOT.2.1" {
		t.Errorf("ROOT.2 subtree wrong: %+v", eng.Children)
	}
}

func TestDepartmentPath(t *testing.T) {
	store := orgtest.NewMemStore()
	depts := seedTree(t, store)
	svc := org.NewService(store)

	path, err := svc.DepartmentPath(context.Background(), depts["ROOT.2.1"].ID)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"ROOT", "ROOT.2", "ROOT.2.1"}
	if len(path) != len(want) {
		t.Fatalf("path length %d, want %d", len(path), len(want))
	}
	for i, code := range want {
		if path[i].Code.String() != code {
			t.Errorf("path[%d] = %s, want %s", i, path[i].Code, code)
		}
	}
}

func TestSearchEmployees(t *testing.T) {
	store := orgtest.NewMemStore()
	seedTree(t, store)
	svc := org.NewService(store)
	ctx := context.Background()

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"alice", 1},
		{"SMITH", 1},
		{"t00", 2},
		{"bob@example.com", 1},
		{"nobody", 0},
	}
	for _, tt := range tests {
		got, err := svc.SearchEmployees(ctx, tt.query)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("SearchEmployees(%q) returned %d, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	store := orgtest.NewMemStore()
	seedTree(t, store)
	svc := org.NewService(store)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalDepartments != 4 || stats.TotalEmployees != 2 || stats.TotalPositions != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByLevel[0] != 1 || stats.ByLevel[1] != 2 || stats.ByLevel[2] != 1 {
		t.Errorf("ByLevel = %v", stats.ByLevel)
	}
}

func TestDeleteDepartmentGuards(t *testing.T) {
	store := orgtest.NewMemStore()
	depts := seedTree(t, store)
	svc := org.NewService(store)
	ctx := context.Background()

	if err := svc.DeleteDepartment(ctx, depts["ROOT"].ID); !errors.Is(err, org.ErrDepartmentHasChildren) {
		t.Errorf("deleting ROOT: got %v, want ErrDepartmentHasChildren", err)
	}
	if err := svc.DeleteDepartment(ctx, depts["ROOT.2.1"].ID); !errors.Is(err, org.ErrDepartmentHasEmployees) {
		t.Errorf("deleting ROOT.2.1: got %v, want ErrDepartmentHasEmployees", err)
	}
	if err := svc.DeleteDepartment(ctx, depts["ROOT.1"].ID); err != nil {
		t.Errorf("deleting empty leaf ROOT.1: %v", err)
	}
	if store.CountDepartments() != 3 {
		t.Errorf("departments after delete = %d, want 3", store.CountDepartments())
	}
}
