package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

type TestResultRepo struct {
	db *sql.DB
}

func NewTestResultRepo(db *sql.DB) *TestResultRepo {
	return &TestResultRepo{db: db}
}

const testResultColumns = `id, lot_id, test_type, result_value, unit, method,
	spec_min, spec_max, status, analyst, tested_at, created_at, updated_at`

func scanTestResult(row interface{ Scan(...interface{}) error }) (*domain.TestResult, error) {
	var t domain.TestResult
	var specMin, specMax sql.NullFloat64
	var testedAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.LotID, &t.TestType, &t.ResultValue, &t.Unit, &t.Method,
		&specMin, &specMax, &t.Status, &t.Analyst, &testedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.SpecMin = floatPtr(specMin)
	t.SpecMax = floatPtr(specMax)
	if testedAt.Valid {
		t.TestedAt = &testedAt.Time
	}
	return &t, nil
}

func (r *TestResultRepo) Create(ctx context.Context, t *domain.TestResult) (*domain.TestResult, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO test_results (lot_id, test_type, result_value, unit, method,
			spec_min, spec_max, status, analyst, tested_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.LotID, t.TestType, t.ResultValue, t.Unit, t.Method,
		nullFloat(t.SpecMin), nullFloat(t.SpecMax), t.Status, t.Analyst, t.TestedAt, now, now,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TestResultRepo) GetByID(ctx context.Context, id int64) (*domain.TestResult, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+testResultColumns+` FROM test_results WHERE id = ?`, id)
	t, err := scanTestResult(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return t, nil
}

func (r *TestResultRepo) Update(ctx context.Context, t *domain.TestResult) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE test_results SET result_value = ?, unit = ?, method = ?, spec_min = ?,
			spec_max = ?, status = ?, analyst = ?, tested_at = ?, updated_at = ?
		WHERE id = ?`,
		t.ResultValue, t.Unit, t.Method, nullFloat(t.SpecMin), nullFloat(t.SpecMax),
		t.Status, t.Analyst, t.TestedAt, time.Now().UTC(), t.ID,
	)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("test result %d not found", t.ID)
	}
	return nil
}

func (r *TestResultRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_results WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("test result %d not found", id)
	}
	return nil
}

func (r *TestResultRepo) ListForLot(ctx context.Context, lotID int64, page domain.PageRequest) ([]domain.TestResult, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM test_results WHERE lot_id = ?`, lotID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+testResultColumns+` FROM test_results WHERE lot_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		lotID, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []domain.TestResult
	for rows.Next() {
		t, err := scanTestResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *t)
	}
	return results, total, rows.Err()
}
