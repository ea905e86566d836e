// Package repository implements the domain repository ports over SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/grbod/labtrack/internal/domain"
)

// mapDBError translates driver-level errors into domain errors so the
// service and API layers never see database/sql internals.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("record not found")
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return domain.ErrConflict("duplicate record: %s", msg)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return domain.ErrValidation("referenced record does not exist")
	}
	return err
}

// nullString converts an empty string to a NULL-safe value and back.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
