package orgimport

// importer.go drives the pipeline end to end:
//
//	Parsing -> Validating -> Resolving -> Committing | RollingBack -> Done
//
// Done always carries a fully-populated ImportResult; row-level problems
// never escape as errors. Only structural input failures (unreadable stream,
// missing header) fail the call outright.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/staffdir/orgimport/internal/org"
)

// errRunAborted signals WithinTx to roll back a strict run; the row-level
// cause has already been recorded on the result.
var errRunAborted = errors.New("orgimport: run aborted")

// Importer orchestrates import runs. It holds no mutable state between
// calls; each run builds its own working set and discards it at the end.
type Importer struct {
	uow org.UnitOfWork
	log *slog.Logger
}

// NewImporter constructs an importer on top of a transactional store.
func NewImporter(uow org.UnitOfWork, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{uow: uow, log: log}
}

// ImportCSV parses CSV input and runs the pipeline.
func (imp *Importer) ImportCSV(ctx context.Context, r io.Reader, opts Options) (*ImportResult, error) {
	input, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return imp.Import(ctx, input, opts)
}

// ImportXLSX parses spreadsheet input and runs the pipeline.
func (imp *Importer) ImportXLSX(ctx context.Context, r io.Reader, opts Options) (*ImportResult, error) {
	input, err := ParseXLSX(r)
	if err != nil {
		return nil, err
	}
	return imp.Import(ctx, input, opts)
}

// Import validates, resolves, and persists already-parsed input under the
// configured failure policy.
func (imp *Importer) Import(ctx context.Context, input *ParsedInput, opts Options) (*ImportResult, error) {
	if opts.Mode == "" {
		opts.Mode = ModeMerge
	}

	result := &ImportResult{TotalProcessed: len(input.Rows)}
	log := imp.log.With("mode", opts.Mode, "skip_on_error", opts.SkipOnError)
	log.Info("import started", "phase", PhaseValidating, "rows", len(input.Rows))

	// Replace mode cannot resolve managers against storage that is about to
	// be cleared.
	var lookup ManagerLookup
	if opts.Mode == ModeMerge {
		lookup = func(ctx context.Context, tab org.TabNumber) (bool, error) {
			_, err := imp.uow.Employees().FindByTabNumber(ctx, tab)
			if err == nil {
				return true, nil
			}
			if errors.Is(err, org.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
	}

	outcome, err := NewValidator(lookup).Validate(ctx, input.Rows)
	if err != nil {
		return nil, fmt.Errorf("validate batch: %w", err)
	}

	if opts.SkipOnError {
		imp.runSkipOnError(ctx, outcome, opts, result, log)
	} else {
		imp.runStrict(ctx, outcome, opts, result, log)
	}

	log.Info("import finished",
		"phase", PhaseDone,
		"total", result.TotalProcessed,
		"successful", result.Successful,
		"errors", result.Errors,
	)
	return result, nil
}

// runStrict persists the whole batch inside one unit of work, or nothing.
// Replace-mode clearing happens inside the same transaction, so a failed run
// leaves previously-replaced data intact.
func (imp *Importer) runStrict(ctx context.Context, outcome *ValidationOutcome, opts Options, result *ImportResult, log *slog.Logger) {
	foldValidationErrors(result, outcome.Errors)

	if len(outcome.Errors) > 0 {
		log.Warn("strict import aborted by validation", "phase", PhaseRollingBack, "errors", len(outcome.Errors))
		abortRows(result, outcome.Valid)
		return
	}

	records := orderForResolution(outcome.Valid)
	ws := newWorkingSet()

	txErr := imp.uow.WithinTx(ctx, func(store org.Store) error {
		if opts.Mode == ModeReplace {
			if err := clearAll(ctx, store); err != nil {
				return err
			}
		}

		for _, rec := range records {
			res, err := resolveRecord(ctx, store, ws, rec)
			if err != nil {
				var rowErr *RowError
				if errors.As(err, &rowErr) {
					result.addError(rowErr.Row, rowErr.Message)
				} else {
					result.addError(rec.Row, err.Error())
				}
				return errRunAborted
			}
			res.promote(ws)
			applyResolution(result, res)
		}
		return nil
	})

	if txErr != nil {
		// Roll back the result too: nothing from this run is visible.
		// A run-level failure gets a row-0 entry but is not counted as a row
		// error; abortRows below accounts for every row.
		if !errors.Is(txErr, errRunAborted) {
			result.ErrorList = append(result.ErrorList, RowError{Row: 0, Message: txErr.Error()})
		}
		log.Warn("strict import rolled back", "phase", PhaseRollingBack, "error", txErr)
		result.Successful = 0
		result.EmployeesCreated = 0
		result.EmployeesUpdated = 0
		result.DepartmentsCreated = 0
		result.PositionsCreated = 0
		abortRows(result, outcome.Valid)
		return
	}

	log.Info("strict import committed", "phase", PhaseCommitting, "employees", result.EmployeesCreated)
}

// runSkipOnError persists each record independently; failures are recorded
// and processing continues. Committed records stay committed.
func (imp *Importer) runSkipOnError(ctx context.Context, outcome *ValidationOutcome, opts Options, result *ImportResult, log *slog.Logger) {
	foldValidationErrors(result, outcome.Errors)

	if opts.Mode == ModeReplace {
		if err := imp.uow.WithinTx(ctx, func(store org.Store) error {
			return clearAll(ctx, store)
		}); err != nil {
			log.Error("replace-mode clearing failed", "error", err)
			result.ErrorList = append(result.ErrorList, RowError{Row: 0, Message: fmt.Sprintf("clear existing data: %v", err)})
			abortRows(result, outcome.Valid)
			return
		}
	}

	records := orderForResolution(outcome.Valid)
	ws := newWorkingSet()

	for _, rec := range records {
		var res *resolution
		err := imp.uow.WithinTx(ctx, func(store org.Store) error {
			var resolveErr error
			res, resolveErr = resolveRecord(ctx, store, ws, rec)
			return resolveErr
		})
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				result.addError(rowErr.Row, rowErr.Message)
			} else {
				result.addError(rec.Row, err.Error())
			}
			continue
		}
		res.promote(ws)
		applyResolution(result, res)
	}
}

// applyResolution folds one successfully persisted record into the counters.
func applyResolution(result *ImportResult, res *resolution) {
	result.Successful++
	result.DepartmentsCreated += len(res.departments)
	if res.position != nil {
		result.PositionsCreated++
	}
	if res.updated {
		result.EmployeesUpdated++
	} else {
		result.EmployeesCreated++
	}
}

// foldValidationErrors records validator output on the result. A row may
// carry several messages; it still counts once toward Errors.
func foldValidationErrors(result *ImportResult, errs []RowError) {
	counted := make(map[int]bool, len(errs))
	for _, e := range errs {
		if !counted[e.Row] {
			counted[e.Row] = true
			result.Errors++
		}
		result.ErrorList = append(result.ErrorList, e)
	}
}

// abortRows marks every not-individually-failed row as aborted so the
// counting invariant totalProcessed == successful + errors holds even when a
// strict run discards rows that were themselves fine.
func abortRows(result *ImportResult, valid []CandidateRecord) {
	reported := make(map[int]bool, len(result.ErrorList))
	for _, e := range result.ErrorList {
		reported[e.Row] = true
	}
	for _, rec := range valid {
		if !reported[rec.Row] {
			result.addError(rec.Row, "not imported: run aborted and rolled back")
		}
	}
}

func clearAll(ctx context.Context, store org.Store) error {
	if err := store.Employees().DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear employees: %w", err)
	}
	if err := store.Positions().DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	if err := store.Departments().DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear departments: %w", err)
	}
	return nil
}
