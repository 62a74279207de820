package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/staffdir/orgimport/internal/org"
)

// DepartmentRepository persists departments keyed by id with the dotted code
// as the unique natural key.
type DepartmentRepository struct {
	db DBTX
}

const departmentColumns = `id, code, name, parent_id, created_at`

func (r *DepartmentRepository) FindByCode(ctx context.Context, code org.DepartmentCode) (*org.Department, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+departmentColumns+`
          FROM departments
         WHERE code = $1
    `, code.String())
	return scanDepartment(row)
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*org.Department, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+departmentColumns+`
          FROM departments
         WHERE id = $1
    `, id)
	return scanDepartment(row)
}

func (r *DepartmentRepository) Save(ctx context.Context, d *org.Department) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO departments (`+departmentColumns+`)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE
           SET name      = EXCLUDED.name,
               parent_id = EXCLUDED.parent_id
    `,
		d.ID, d.Code.String(), d.Name, d.ParentID, d.CreatedAt,
	)
	return translateError(err)
}

func (r *DepartmentRepository) FindAll(ctx context.Context) ([]*org.Department, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+departmentColumns+`
          FROM departments
         ORDER BY code
    `)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var departments []*org.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return org.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM departments`)
	return translateError(err)
}

func scanDepartment(row pgx.Row) (*org.Department, error) {
	var (
		d       org.Department
		rawCode string
	)
	if err := row.Scan(&d.ID, &rawCode, &d.Name, &d.ParentID, &d.CreatedAt); err != nil {
		return nil, translateError(err)
	}

	code, err := org.NewDepartmentCode(rawCode)
	if err != nil {
		return nil, fmt.Errorf("stored department code: %w", err)
	}
	d.Code = code
	return &d, nil
}
