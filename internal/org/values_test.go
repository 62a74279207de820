package org

import (
	"strings"
	"testing"
)

func TestNewTabNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "T001", want: "T001"},
		{name: "trims whitespace", input: "  EMP-42  ", want: "EMP-42"},
		{name: "dots and underscores", input: "a_b.c-d", want: "a_b.c-d"},
		{name: "empty", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "space inside", input: "T 001", wantErr: true},
		{name: "slash", input: "T/001", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxTabNumberLength+1), wantErr: true},
		{name: "at limit", input: strings.Repeat("a", MaxTabNumberLength), want: strings.Repeat("a", MaxTabNumberLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTabNumber(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewTabNumber(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTabNumber(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("NewTabNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewDepartmentCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		level   int
		wantErr bool
	}{
		{name: "root", input: "ROOT", level: 0},
		{name: "nested", input: "ROOT.3.2", level: 2},
		{name: "dash and underscore", input: "HQ.it-ops.l2_support", level: 2},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing dot", input: "ROOT.", wantErr: true},
		{name: "double dot", input: "ROOT..2", wantErr: true},
		{name: "segment starts with dash", input: "ROOT.-2", wantErr: true},
		{name: "space in segment", input: "ROOT.a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDepartmentCode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewDepartmentCode(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDepartmentCode(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != strings.TrimSpace(tt.input) {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
			if got.Level() != tt.level {
				t.Errorf("Level() = %d, want %d", got.Level(), tt.level)
			}
		})
	}
}

func TestDepartmentCodeParent(t *testing.T) {
	code, err := NewDepartmentCode("ROOT.3.2")
	if err != nil {
		t.Fatal(err)
	}

	parent, ok := code.Parent()
	if !ok || parent.String() != "ROOT.3" {
		t.Fatalf("Parent() = %q, %v; want ROOT.3, true", parent, ok)
	}

	grand, ok := parent.Parent()
	if !ok || grand.String() != "ROOT" {
		t.Fatalf("Parent() = %q, %v; want ROOT, true", grand, ok)
	}

	if _, ok := grand.Parent(); ok {
		t.Error("root code should have no parent")
	}

	if !code.IsChildOf(grand) {
		t.Error("ROOT.3.2 should be a child of ROOT")
	}
	if grand.IsChildOf(code) {
		t.Error("ROOT should not be a child of ROOT.3.2")
	}
}

func TestDepartmentCodeChild(t *testing.T) {
	root, _ := NewDepartmentCode("ROOT")

	child, err := root.Child("7")
	if err != nil {
		t.Fatalf("Child(7): %v", err)
	}
	if child.String() != "ROOT.7" {
		t.Errorf("Child() = %q, want ROOT.7", child)
	}

	if _, err := root.Child("a b"); err == nil {
		t.Error("Child with invalid segment should fail")
	}

	// Appending a child must not mutate the receiver.
	if root.String() != "ROOT" {
		t.Errorf("receiver mutated to %q", root)
	}
}

func TestNewPersonalInfo(t *testing.T) {
	tests := []struct {
		name      string
		fullName  string
		email     string
		phone     string
		wantPhone string
		wantErr   bool
	}{
		{
			name: "valid", fullName: "Alice Root", email: "alice@example.com",
			phone: "+1 (555) 010-0001", wantPhone: "15550100001",
		},
		{
			name: "accented name", fullName: "José Núñez-O'Brien", email: "jose@example.com",
			phone: "5550100001", wantPhone: "5550100001",
		},
		{name: "empty name", fullName: "", email: "a@example.com", phone: "5550100001", wantErr: true},
		{name: "name too long", fullName: strings.Repeat("a", MaxFullNameLength+1), email: "a@example.com", phone: "5550100001", wantErr: true},
		{name: "name with digits ok", fullName: "Agent 47", email: "a@example.com", phone: "5550100001", wantPhone: "5550100001"},
		{name: "empty email", fullName: "Alice", email: "", phone: "5550100001", wantErr: true},
		{name: "email without at", fullName: "Alice", email: "alice.example.com", phone: "5550100001", wantErr: true},
		{name: "email domain without dot", fullName: "Alice", email: "alice@localhost", phone: "5550100001", wantErr: true},
		{name: "phone too short", fullName: "Alice", email: "a@example.com", phone: "555", wantErr: true},
		{name: "phone too long", fullName: "Alice", email: "a@example.com", phone: strings.Repeat("1", 16), wantErr: true},
		{name: "phone with letters", fullName: "Alice", email: "a@example.com", phone: "555-CALL-NOW", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPersonalInfo(tt.fullName, tt.email, tt.phone)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewPersonalInfo(%q, %q, %q) expected error", tt.fullName, tt.email, tt.phone)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPersonalInfo: %v", err)
			}
			if got.Phone != tt.wantPhone {
				t.Errorf("Phone = %q, want %q", got.Phone, tt.wantPhone)
			}
		})
	}
}
