package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/staffdir/orgimport/internal/org"
)

// PositionRepository persists positions; (title, department_id) is unique.
type PositionRepository struct {
	db DBTX
}

const positionColumns = `id, title, department_id, created_at`

func (r *PositionRepository) FindByTitleAndDepartment(ctx context.Context, title string, departmentID uuid.UUID) (*org.Position, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         WHERE title = $1 AND department_id = $2
    `, title, departmentID)
	return scanPosition(row)
}

func (r *PositionRepository) Save(ctx context.Context, p *org.Position) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO positions (`+positionColumns+`)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE
           SET title         = EXCLUDED.title,
               department_id = EXCLUDED.department_id
    `,
		p.ID, p.Title, p.DepartmentID, p.CreatedAt,
	)
	return translateError(err)
}

func (r *PositionRepository) FindAll(ctx context.Context) ([]*org.Position, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         ORDER BY title, department_id
    `)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var positions []*org.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *PositionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM positions`)
	return translateError(err)
}

func scanPosition(row pgx.Row) (*org.Position, error) {
	var p org.Position
	if err := row.Scan(&p.ID, &p.Title, &p.DepartmentID, &p.CreatedAt); err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}
