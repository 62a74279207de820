package orgimport

// validate.go performs batch-wide validation of parsed rows: value-object
// construction, tab-number uniqueness, manager-reference resolution, and
// detection of circular manager chains. Errors are accumulated, never thrown;
// the orchestrator needs the complete error set to apply either failure
// policy.

import (
	"context"
	"fmt"

	"github.com/staffdir/orgimport/internal/org"
)

// ManagerLookup checks storage for an employee with the given tab number.
// It backs manager references that point outside the current batch. A nil
// lookup (replace mode) means only batch-local references can resolve.
type ManagerLookup func(ctx context.Context, tab org.TabNumber) (bool, error)

// ValidationOutcome is the validator output. Valid preserves original row
// order; Errors are deterministic for the same input: field and reference
// errors in row order, then cycle errors in detection order.
type ValidationOutcome struct {
	Valid  []CandidateRecord
	Errors []RowError
}

// Validator checks candidate rows against field rules and the batch-wide
// manager graph.
type Validator struct {
	lookup ManagerLookup
}

// NewValidator constructs a validator. lookup may be nil.
func NewValidator(lookup ManagerLookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate builds candidate records from raw rows and accumulates every
// row-scoped problem. Only infrastructure failures of the storage lookup are
// returned as an error.
func (v *Validator) Validate(ctx context.Context, rows []RawRow) (*ValidationOutcome, error) {
	outcome := &ValidationOutcome{}

	seen := make(map[string]int, len(rows)) // tab number -> first row index
	var candidates []CandidateRecord

	for _, row := range rows {
		if row.Unparsable {
			outcome.addError(row.Index, row.Reason)
			continue
		}

		record, errs := buildCandidate(row)
		if len(errs) > 0 {
			for _, msg := range errs {
				outcome.addError(row.Index, msg)
			}
			continue
		}

		tab := record.TabNumber.String()
		if firstRow, dup := seen[tab]; dup {
			// First occurrence wins; later occurrences are rejected.
			outcome.addError(row.Index, fmt.Sprintf("duplicate tab number %q (first used in row %d)", tab, firstRow))
			continue
		}
		seen[tab] = row.Index

		candidates = append(candidates, record)
	}

	candidates, err := v.checkManagers(ctx, candidates, seen, outcome)
	if err != nil {
		return nil, err
	}

	outcome.Valid = checkCycles(candidates, outcome)
	return outcome, nil
}

func (o *ValidationOutcome) addError(row int, message string) {
	o.Errors = append(o.Errors, RowError{Row: row, Message: message})
}

// buildCandidate constructs the value objects for one row and returns every
// construction failure as a message.
func buildCandidate(row RawRow) (CandidateRecord, []string) {
	var errs []string

	tab, err := org.NewTabNumber(row.Cell(ColTabNumber))
	if err != nil {
		errs = append(errs, err.Error())
	}

	info, err := org.NewPersonalInfo(row.Cell(ColFullName), row.Cell(ColEmail), row.Cell(ColPhone))
	if err != nil {
		errs = append(errs, err.Error())
	}

	code, err := org.NewDepartmentCode(row.Cell(ColDepartment))
	if err != nil {
		errs = append(errs, err.Error())
	}

	title := row.Cell(ColPosition)
	if title == "" {
		errs = append(errs, "position is empty")
	}

	if len(errs) > 0 {
		return CandidateRecord{}, errs
	}

	name := row.Cell(ColDepartmentName)
	if name == "" {
		name = code.String()
	}

	return CandidateRecord{
		Row:            row.Index,
		TabNumber:      tab,
		Info:           info,
		DepartmentCode: code,
		DepartmentName: name,
		PositionTitle:  title,
		ManagerTab:     row.Cell(ColManager),
	}, nil
}

// checkManagers validates manager references: blank, batch-local, or
// resolvable in storage. Self-references and dangling references drop the
// record.
func (v *Validator) checkManagers(ctx context.Context, candidates []CandidateRecord, batch map[string]int, outcome *ValidationOutcome) ([]CandidateRecord, error) {
	kept := candidates[:0]
	for _, rec := range candidates {
		if rec.ManagerTab == "" {
			kept = append(kept, rec)
			continue
		}

		if rec.ManagerTab == rec.TabNumber.String() {
			outcome.addError(rec.Row, fmt.Sprintf("employee %s cannot be their own manager", rec.TabNumber))
			continue
		}

		if _, inBatch := batch[rec.ManagerTab]; inBatch {
			kept = append(kept, rec)
			continue
		}

		managerTab, err := org.NewTabNumber(rec.ManagerTab)
		if err != nil {
			outcome.addError(rec.Row, fmt.Sprintf("invalid manager reference %q: %v", rec.ManagerTab, err))
			continue
		}

		if v.lookup != nil {
			exists, err := v.lookup(ctx, managerTab)
			if err != nil {
				return nil, fmt.Errorf("manager lookup for row %d: %w", rec.Row, err)
			}
			if exists {
				kept = append(kept, rec)
				continue
			}
		}

		outcome.addError(rec.Row, fmt.Sprintf("manager with tab number %q not found", rec.ManagerTab))
	}
	return kept, nil
}

// checkCycles walks the batch-local manager graph and rejects every record on
// a circular chain. Each node has at most one outgoing edge, so a traversal
// with a visiting set finds cycles in one pass; only the affected component
// is abandoned, the rest of the batch is still checked. Cross-batch edges to
// persisted employees cannot close a new cycle and are ignored here.
func checkCycles(candidates []CandidateRecord, outcome *ValidationOutcome) []CandidateRecord {
	byTab := make(map[string]CandidateRecord, len(candidates))
	for _, rec := range candidates {
		byTab[rec.TabNumber.String()] = rec
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(candidates))
	onCycle := make(map[string]bool)

	for _, rec := range candidates {
		start := rec.TabNumber.String()
		if state[start] != unvisited {
			continue
		}

		// Walk the manager chain, recording the current path.
		var path []string
		tab := start
		for {
			state[tab] = visiting
			path = append(path, tab)

			next := byTab[tab].ManagerTab
			if next == "" {
				break
			}
			nextRec, inBatch := byTab[next]
			if !inBatch {
				break // manager outside the batch, already acyclic
			}

			if state[next] == visiting {
				// The edge closes a cycle: everything from next onward in
				// the current path is on it.
				for i := len(path) - 1; i >= 0; i-- {
					onCycle[path[i]] = true
					if path[i] == next {
						break
					}
				}
				break
			}
			if state[next] == visited {
				break
			}
			tab = nextRec.TabNumber.String()
		}

		for _, p := range path {
			state[p] = visited
		}
	}

	kept := candidates[:0]
	for _, rec := range candidates {
		if onCycle[rec.TabNumber.String()] {
			outcome.addError(rec.Row, fmt.Sprintf("circular manager chain involving tab number %q", rec.TabNumber))
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}
