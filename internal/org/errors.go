package org

import "errors"

// Sentinel errors shared by repository implementations and services.
// Repositories return ErrNotFound for missing aggregates so callers can
// distinguish "absent" from infrastructure failures with errors.Is.
var (
	ErrNotFound               = errors.New("org: not found")
	ErrDuplicateTabNumber     = errors.New("org: tab number already exists")
	ErrDuplicateCode          = errors.New("org: department code already exists")
	ErrDepartmentHasChildren  = errors.New("org: department has child departments")
	ErrDepartmentHasEmployees = errors.New("org: department has employees")
)
