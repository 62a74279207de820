package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/staffdir/orgimport/internal/org"
)

// EmployeeRepository persists employees keyed by id with tab_number as the
// unique business key.
type EmployeeRepository struct {
	db DBTX
}

const employeeColumns = `id, tab_number, full_name, email, phone, department_id, position_id, manager_id, created_at, updated_at`

func (r *EmployeeRepository) FindByTabNumber(ctx context.Context, tab org.TabNumber) (*org.Employee, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE tab_number = $1
    `, tab.String())
	return scanEmployee(row)
}

// Save upserts by id. UpdatedAt is bumped on the aggregate so in-memory state
// matches what was written.
func (r *EmployeeRepository) Save(ctx context.Context, e *org.Employee) error {
	e.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
        INSERT INTO employees (`+employeeColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE
           SET full_name     = EXCLUDED.full_name,
               email         = EXCLUDED.email,
               phone         = EXCLUDED.phone,
               department_id = EXCLUDED.department_id,
               position_id   = EXCLUDED.position_id,
               manager_id    = EXCLUDED.manager_id,
               updated_at    = EXCLUDED.updated_at
    `,
		e.ID,
		e.TabNumber.String(),
		e.Info.FullName,
		e.Info.Email,
		e.Info.Phone,
		e.DepartmentID,
		e.PositionID,
		e.ManagerID,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return translateError(err)
}

func (r *EmployeeRepository) FindAll(ctx context.Context) ([]*org.Employee, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY tab_number
    `)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var employees []*org.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM employees`)
	return translateError(err)
}

// scanEmployee reconstructs the aggregate, re-validating the business key so
// a corrupted row surfaces as an error instead of a zero value.
func scanEmployee(row pgx.Row) (*org.Employee, error) {
	var (
		e        org.Employee
		rawTab   string
		fullName string
		email    string
		phone    string
	)
	err := row.Scan(
		&e.ID, &rawTab, &fullName, &email, &phone,
		&e.DepartmentID, &e.PositionID, &e.ManagerID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	tab, err := org.NewTabNumber(rawTab)
	if err != nil {
		return nil, fmt.Errorf("stored tab number: %w", err)
	}
	e.TabNumber = tab
	e.Info = org.PersonalInfo{FullName: fullName, Email: email, Phone: phone}
	return &e, nil
}
