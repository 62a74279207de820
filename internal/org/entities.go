package org

import (
	"time"

	"github.com/google/uuid"
)

// Department is an org unit identified by a generated id and the natural key
// DepartmentCode. ParentID is derived from the code's parent; the hierarchy is
// materialized top-down, so a persisted department's parent always exists.
type Department struct {
	ID        uuid.UUID
	Code      DepartmentCode
	Name      string
	ParentID  *uuid.UUID
	CreatedAt time.Time
}

// NewDepartment constructs a department with a fresh id.
func NewDepartment(code DepartmentCode, name string, parentID *uuid.UUID) *Department {
	return &Department{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
}

// Position is a job title within a department. Its natural key is
// (title, department id); positions are created on demand during import.
type Position struct {
	ID           uuid.UUID
	Title        string
	DepartmentID uuid.UUID
	CreatedAt    time.Time
}

// NewPosition constructs a position with a fresh id.
func NewPosition(title string, departmentID uuid.UUID) *Position {
	return &Position{
		ID:           uuid.New(),
		Title:        title,
		DepartmentID: departmentID,
		CreatedAt:    time.Now().UTC(),
	}
}

// Employee is the staff aggregate. Identity is a generated id plus the
// business key TabNumber; ManagerID references another employee by id.
type Employee struct {
	ID           uuid.UUID
	TabNumber    TabNumber
	Info         PersonalInfo
	DepartmentID uuid.UUID
	PositionID   uuid.UUID
	ManagerID    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewEmployee constructs an employee with a fresh id.
func NewEmployee(tab TabNumber, info PersonalInfo, departmentID, positionID uuid.UUID, managerID *uuid.UUID) *Employee {
	now := time.Now().UTC()
	return &Employee{
		ID:           uuid.New(),
		TabNumber:    tab,
		Info:         info,
		DepartmentID: departmentID,
		PositionID:   positionID,
		ManagerID:    managerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
