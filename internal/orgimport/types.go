// Package orgimport implements the org-structure import pipeline: parsing
// tabular input into candidate records, validating field values and manager
// relationships across the whole batch, resolving records into
// Department/Position/Employee aggregates, and committing them under one of
// two failure policies (strict all-or-nothing, or skip-on-error).
package orgimport

import (
	"fmt"
	"strings"

	"github.com/staffdir/orgimport/internal/org"
)

// Column names of the input header contract. Matching is case-insensitive
// after cell cleaning.
const (
	ColFullName       = "full_name"
	ColTabNumber      = "tab_number"
	ColEmail          = "email"
	ColPhone          = "phone"
	ColDepartment     = "department"
	ColDepartmentName = "department_name"
	ColPosition       = "position"
	ColManager        = "manager_tab_number"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{
	ColFullName, ColTabNumber, ColEmail, ColPhone, ColDepartment, ColPosition,
}

// HeaderIndex maps cleaned lowercase column names to their position in a row.
type HeaderIndex map[string]int

// RawRow is one data row of the input, keyed by column name.
// Index is 1-based and excludes the header row. A row whose column count does
// not match the header is carried as Unparsable instead of aborting the
// parse, so the skip-on-error policy applies to it like any other bad row.
type RawRow struct {
	Index      int
	Cells      map[string]string
	Unparsable bool
	Reason     string
}

// Cell returns the cleaned value of the named column, or "" if absent.
func (r RawRow) Cell(col string) string { return r.Cells[col] }

// CandidateRecord is a fully field-validated row awaiting entity resolution.
type CandidateRecord struct {
	Row            int
	TabNumber      org.TabNumber
	Info           org.PersonalInfo
	DepartmentCode org.DepartmentCode
	DepartmentName string
	PositionTitle  string
	ManagerTab     string // empty when the row has no manager reference
}

// RowError is a recoverable, row-scoped problem reported in the ImportResult.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Message) }

// ImportMode governs how pre-existing data is treated before the run starts.
type ImportMode string

const (
	// ModeMerge leaves existing data intact; resolution may match against it.
	ModeMerge ImportMode = "merge"
	// ModeReplace clears the employee, position, and department collections
	// before importing.
	ModeReplace ImportMode = "replace"
)

// ParseMode converts a request string into an ImportMode; empty defaults to merge.
func ParseMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeMerge):
		return ModeMerge, nil
	case string(ModeReplace):
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

// Options is the full configuration surface of one import call.
type Options struct {
	Mode        ImportMode
	SkipOnError bool
}

// Phase labels the pipeline stage of an import run, used in logs.
type Phase string

const (
	PhaseParsing     Phase = "parsing"
	PhaseValidating  Phase = "validating"
	PhaseResolving   Phase = "resolving"
	PhaseCommitting  Phase = "committing"
	PhaseRollingBack Phase = "rolling_back"
	PhaseDone        Phase = "done"
)

// ImportResult is the terminal outcome of one import run. It is always fully
// populated when the run reaches Done, even if every row failed; only
// structural input problems escape as Go errors instead.
type ImportResult struct {
	TotalProcessed     int        `json:"totalProcessed"`
	Successful         int        `json:"successful"`
	Errors             int        `json:"errors"`
	EmployeesCreated   int        `json:"employeesCreated"`
	EmployeesUpdated   int        `json:"employeesUpdated"`
	DepartmentsCreated int        `json:"departmentsCreated"`
	PositionsCreated   int        `json:"positionsCreated"`
	ErrorList          []RowError `json:"errorList"`
}

// addError appends a row error and bumps the error count.
func (r *ImportResult) addError(row int, message string) {
	r.Errors++
	r.ErrorList = append(r.ErrorList, RowError{Row: row, Message: message})
}
