package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

type AnnotationRepo struct {
	db *sql.DB
}

func NewAnnotationRepo(db *sql.DB) *AnnotationRepo {
	return &AnnotationRepo{db: db}
}

func (r *AnnotationRepo) Create(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO annotations (audit_id, username, body, created_at)
		VALUES (?, ?, ?, ?)`,
		a.AuditID, a.Username, a.Body, now,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	out := *a
	out.ID = id
	out.CreatedAt = now
	return &out, nil
}

func (r *AnnotationRepo) ListForEntry(ctx context.Context, auditID int64) ([]domain.Annotation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, audit_id, username, body, created_at
		FROM annotations WHERE audit_id = ? ORDER BY id`, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var annotations []domain.Annotation
	for rows.Next() {
		var a domain.Annotation
		if err := rows.Scan(&a.ID, &a.AuditID, &a.Username, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}
