package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/grbod/labtrack/internal/audittrail"
	"github.com/grbod/labtrack/internal/domain"
)

// auditedTables are the table names accepted by trail queries.
var auditedTables = map[string]bool{
	tableCustomers:   true,
	tableLots:        true,
	tableTestResults: true,
	tableCOAs:        true,
}

type AuditService struct {
	audit domain.AuditRepository
}

func NewAuditService(audit domain.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.audit.List(ctx, filter)
}

// DetailedTrail returns the full change history for one record, one row
// per field change.
func (s *AuditService) DetailedTrail(ctx context.Context, tableName string, recordID int64) ([]audittrail.DetailedRow, error) {
	entries, err := s.trailEntries(ctx, tableName, recordID)
	if err != nil {
		return nil, err
	}
	return audittrail.Flatten(entries), nil
}

// SummaryTrail returns the consolidated history for one record, with
// rapid successive edits by the same actor merged into single rows.
func (s *AuditService) SummaryTrail(ctx context.Context, tableName string, recordID int64) ([]audittrail.ConsolidatedRow, error) {
	entries, err := s.trailEntries(ctx, tableName, recordID)
	if err != nil {
		return nil, err
	}
	return audittrail.Consolidate(entries), nil
}

// ExportCSV streams the detailed trail for one record as CSV.
func (s *AuditService) ExportCSV(ctx context.Context, tableName string, recordID int64, w io.Writer) error {
	rows, err := s.DetailedTrail(ctx, tableName, recordID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time", "User", "Action", "Field", "Old Value", "New Value", "Reason"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		reason := r.Reason
		if r.AnnotationCount == audittrail.NoAnnotations {
			reason = ""
		}
		rec := []string{
			r.DisplayTime,
			r.Username,
			string(r.Action),
			r.Field,
			r.OldValue,
			r.NewValue,
			reason,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *AuditService) trailEntries(ctx context.Context, tableName string, recordID int64) ([]domain.AuditEntry, error) {
	if !auditedTables[tableName] {
		return nil, domain.ErrValidation("unknown audit table %q", tableName)
	}
	if recordID <= 0 {
		return nil, domain.ErrValidation("record id must be positive, got %s", strconv.FormatInt(recordID, 10))
	}
	return s.audit.ListForRecord(ctx, tableName, recordID)
}
