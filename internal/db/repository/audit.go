package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (table_name, record_id, action, username, changes,
			reason, is_bulk, bulk_summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TableName, e.RecordID, string(e.Action), e.Username, string(changes),
		e.Reason, boolToInt(e.IsBulkOperation), e.BulkSummary, ts,
	)
	if err != nil {
		return mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	e.Timestamp = ts
	return nil
}

const auditSelect = `
	SELECT a.id, a.table_name, a.record_id, a.action, a.username, a.changes,
		a.reason, a.is_bulk, a.bulk_summary, a.created_at,
		(SELECT COUNT(*) FROM annotations n WHERE n.audit_id = a.id) AS annotation_count
	FROM audit_log a`

func scanAuditEntry(row interface{ Scan(...interface{}) error }) (*domain.AuditEntry, error) {
	var e domain.AuditEntry
	var action, changesJSON string
	var isBulk int
	err := row.Scan(
		&e.ID, &e.TableName, &e.RecordID, &action, &e.Username, &changesJSON,
		&e.Reason, &isBulk, &e.BulkSummary, &e.Timestamp, &e.AnnotationCount,
	)
	if err != nil {
		return nil, err
	}
	e.Action = domain.AuditAction(action)
	e.IsBulkOperation = isBulk != 0
	if err := json.Unmarshal([]byte(changesJSON), &e.Changes); err != nil {
		return nil, fmt.Errorf("unmarshal audit changes: %w", err)
	}
	return &e, nil
}

func (r *AuditRepo) GetByID(ctx context.Context, id int64) (*domain.AuditEntry, error) {
	row := r.db.QueryRowContext(ctx, auditSelect+` WHERE a.id = ?`, id)
	e, err := scanAuditEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound("audit entry %d not found", id)
		}
		return nil, mapDBError(err)
	}
	return e, nil
}

// ListForRecord returns the full trail for one record ordered by
// timestamp ascending, ID as tiebreaker so same-second writes keep
// insertion order.
func (r *AuditRepo) ListForRecord(ctx context.Context, tableName string, recordID int64) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		auditSelect+` WHERE a.table_name = ? AND a.record_id = ? ORDER BY a.created_at, a.id`,
		tableName, recordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	where := ` WHERE (? IS NULL OR a.table_name = ?)
		AND (? IS NULL OR a.record_id = ?)
		AND (? IS NULL OR a.username = ?)
		AND (? IS NULL OR a.action = ?)`

	var tableArg interface{}
	var table string
	if filter.TableName != nil {
		tableArg = *filter.TableName
		table = *filter.TableName
	}
	var recordArg interface{}
	var record int64
	if filter.RecordID != nil {
		recordArg = *filter.RecordID
		record = *filter.RecordID
	}
	var userArg interface{}
	var user string
	if filter.Username != nil {
		userArg = *filter.Username
		user = *filter.Username
	}
	var actionArg interface{}
	var action string
	if filter.Action != nil {
		actionArg = *filter.Action
		action = *filter.Action
	}

	args := []interface{}{
		tableArg, table, recordArg, record, userArg, user, actionArg, action,
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log a`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	listArgs := append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		auditSelect+where+` ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`,
		listArgs...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *e)
	}
	return entries, total, rows.Err()
}

// PurgeOlderThan deletes audit entries older than the given number of
// days and returns the number removed. Annotations cascade.
func (r *AuditRepo) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, domain.ErrValidation("retention days must be positive, got %d", days)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
