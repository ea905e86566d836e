package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/grbod/labtrack/internal/domain"
)

type COARepo struct {
	db *sql.DB
}

func NewCOARepo(db *sql.DB) *COARepo {
	return &COARepo{db: db}
}

func (r *COARepo) Create(ctx context.Context, c *domain.COA) (*domain.COA, error) {
	results, err := json.Marshal(c.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal coa results: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO coas (coa_number, lot_id, issued_by, issued_at, results_json)
		VALUES (?, ?, ?, ?, ?)`,
		c.Number, c.LotID, c.IssuedBy, c.IssuedAt, string(results),
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

func (r *COARepo) GetByID(ctx context.Context, id int64) (*domain.COA, error) {
	return r.get(ctx, `WHERE id = ?`, id)
}

func (r *COARepo) GetByLot(ctx context.Context, lotID int64) (*domain.COA, error) {
	return r.get(ctx, `WHERE lot_id = ? ORDER BY id DESC LIMIT 1`, lotID)
}

func (r *COARepo) get(ctx context.Context, where string, arg interface{}) (*domain.COA, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, coa_number, lot_id, issued_by, issued_at, results_json, created_at
		FROM coas `+where, arg)

	var c domain.COA
	var resultsJSON string
	err := row.Scan(&c.ID, &c.Number, &c.LotID, &c.IssuedBy, &c.IssuedAt, &resultsJSON, &c.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &c.Results); err != nil {
		return nil, fmt.Errorf("unmarshal coa results: %w", err)
	}
	return &c, nil
}

func (r *COARepo) List(ctx context.Context, page domain.PageRequest) ([]domain.COA, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coas`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, coa_number, lot_id, issued_by, issued_at, results_json, created_at
		FROM coas ORDER BY id DESC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var coas []domain.COA
	for rows.Next() {
		var c domain.COA
		var resultsJSON string
		if err := rows.Scan(&c.ID, &c.Number, &c.LotID, &c.IssuedBy, &c.IssuedAt, &resultsJSON, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(resultsJSON), &c.Results); err != nil {
			return nil, 0, fmt.Errorf("unmarshal coa results: %w", err)
		}
		coas = append(coas, c)
	}
	return coas, total, rows.Err()
}
