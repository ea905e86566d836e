package repository

import (
	"context"
	"database/sql"

	"github.com/grbod/labtrack/internal/domain"
)

type TestMethodRepo struct {
	db *sql.DB
}

func NewTestMethodRepo(db *sql.DB) *TestMethodRepo {
	return &TestMethodRepo{db: db}
}

// Upsert inserts or refreshes a catalog entry by name. Used by startup
// seeding, which must be idempotent.
func (r *TestMethodRepo) Upsert(ctx context.Context, m *domain.TestMethod) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO test_methods (name, unit, method, spec_min, spec_max)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			unit = excluded.unit,
			method = excluded.method,
			spec_min = excluded.spec_min,
			spec_max = excluded.spec_max`,
		m.Name, m.Unit, m.Method, nullFloat(m.SpecMin), nullFloat(m.SpecMax),
	)
	return mapDBError(err)
}

func (r *TestMethodRepo) GetByName(ctx context.Context, name string) (*domain.TestMethod, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, unit, method, spec_min, spec_max, created_at
		FROM test_methods WHERE name = ?`, name)

	var m domain.TestMethod
	var specMin, specMax sql.NullFloat64
	err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.Method, &specMin, &specMax, &m.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	m.SpecMin = floatPtr(specMin)
	m.SpecMax = floatPtr(specMax)
	return &m, nil
}

func (r *TestMethodRepo) List(ctx context.Context) ([]domain.TestMethod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit, method, spec_min, spec_max, created_at
		FROM test_methods ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []domain.TestMethod
	for rows.Next() {
		var m domain.TestMethod
		var specMin, specMax sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.Method, &specMin, &specMax, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.SpecMin = floatPtr(specMin)
		m.SpecMax = floatPtr(specMax)
		methods = append(methods, m)
	}
	return methods, rows.Err()
}
