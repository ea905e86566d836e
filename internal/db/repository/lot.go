package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

type LotRepo struct {
	db *sql.DB
}

func NewLotRepo(db *sql.DB) *LotRepo {
	return &LotRepo{db: db}
}

const lotColumns = `id, lot_number, product_name, customer_id, quantity, unit, status,
	manufacture_date, expiry_date, notes, created_at, updated_at`

func scanLot(row interface{ Scan(...interface{}) error }) (*domain.Lot, error) {
	var l domain.Lot
	var customerID sql.NullInt64
	var mfg, exp sql.NullTime
	err := row.Scan(
		&l.ID, &l.LotNumber, &l.ProductName, &customerID, &l.Quantity, &l.Unit,
		&l.Status, &mfg, &exp, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.CustomerID = intPtr(customerID)
	if mfg.Valid {
		l.ManufactureDate = &mfg.Time
	}
	if exp.Valid {
		l.ExpiryDate = &exp.Time
	}
	return &l, nil
}

func (r *LotRepo) Create(ctx context.Context, l *domain.Lot) (*domain.Lot, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lots (lot_number, product_name, customer_id, quantity, unit, status,
			manufacture_date, expiry_date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.LotNumber, l.ProductName, nullInt(l.CustomerID), l.Quantity, l.Unit,
		l.Status, l.ManufactureDate, l.ExpiryDate, l.Notes, now, now,
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

func (r *LotRepo) GetByID(ctx context.Context, id int64) (*domain.Lot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE id = ?`, id)
	l, err := scanLot(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return l, nil
}

func (r *LotRepo) Update(ctx context.Context, l *domain.Lot) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lots SET product_name = ?, customer_id = ?, quantity = ?, unit = ?,
			status = ?, manufacture_date = ?, expiry_date = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		l.ProductName, nullInt(l.CustomerID), l.Quantity, l.Unit, l.Status,
		l.ManufactureDate, l.ExpiryDate, l.Notes, time.Now().UTC(), l.ID,
	)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("lot %d not found", l.ID)
	}
	return nil
}

func (r *LotRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lots WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("lot %d not found", id)
	}
	return nil
}

func (r *LotRepo) List(ctx context.Context, filter domain.LotFilter) ([]domain.Lot, int64, error) {
	where := ` WHERE (? IS NULL OR status = ?) AND (? IS NULL OR customer_id = ?)`

	var statusArg interface{}
	var status string
	if filter.Status != nil {
		statusArg = *filter.Status
		status = *filter.Status
	}
	var customerArg interface{}
	var customerID int64
	if filter.CustomerID != nil {
		customerArg = *filter.CustomerID
		customerID = *filter.CustomerID
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lots`+where,
		statusArg, status, customerArg, customerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lotColumns+` FROM lots`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		statusArg, status, customerArg, customerID, filter.Page.Limit(), filter.Page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var lots []domain.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, 0, err
		}
		lots = append(lots, *l)
	}
	return lots, total, rows.Err()
}
