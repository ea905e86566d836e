package audittrail

import (
	"sort"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

// DetailedRow is one line of the detailed audit view: a single field
// change, or a whole changeless entry.
type DetailedRow struct {
	AuditID     int64              `json:"audit_id"`
	Action      domain.AuditAction `json:"action"`
	Username    string             `json:"username,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	DisplayTime string             `json:"display_time"`
	Field       string             `json:"field"`
	OldValue    string             `json:"old_value"`
	NewValue    string             `json:"new_value"`
	// Reason and AnnotationCount are carried only on the first row
	// emitted for an entry; AnnotationCount is NoAnnotations elsewhere.
	Reason          string `json:"reason,omitempty"`
	AnnotationCount int    `json:"annotation_count"`
}

// Flatten expands each audit entry into one display row per field change,
// preserving change order, then applies the detailed-view sort. Entries
// without changes yield exactly one row labelled by the bulk summary
// (when flagged) or "Record created".
func Flatten(entries []domain.AuditEntry) []DetailedRow {
	var rows []DetailedRow
	for _, e := range entries {
		if len(e.Changes) == 0 {
			field := "Record created"
			if e.IsBulkOperation && e.BulkSummary != "" {
				field = e.BulkSummary
			}
			rows = append(rows, DetailedRow{
				AuditID:         e.ID,
				Action:          e.Action,
				Username:        e.Username,
				Timestamp:       e.Timestamp,
				DisplayTime:     displayTime(e.Timestamp),
				Field:           field,
				OldValue:        placeholder,
				NewValue:        placeholder,
				Reason:          e.Reason,
				AnnotationCount: e.AnnotationCount,
			})
			continue
		}

		for i, c := range e.Changes {
			row := DetailedRow{
				AuditID:         e.ID,
				Action:          e.Action,
				Username:        e.Username,
				Timestamp:       e.Timestamp,
				DisplayTime:     displayTime(e.Timestamp),
				Field:           c.Field,
				OldValue:        oldDisplay(c),
				NewValue:        newDisplay(c),
				AnnotationCount: NoAnnotations,
			}
			if i == 0 {
				row.Reason = e.Reason
				row.AnnotationCount = e.AnnotationCount
			}
			rows = append(rows, row)
		}
	}

	sortDetailed(rows)
	return rows
}

// sortDetailed orders detailed rows with a three-level comparator:
//
//  1. timestamp descending; decisive alone when two rows are more than
//     the consolidation window apart,
//  2. within a cluster, lexicographic on the field-label group prefix,
//  3. within a group, status fields after non-status fields.
//
// The clustering keeps near-simultaneous multi-field writes adjacent and
// places status transitions last, since they are typically consequences
// of the other edits in the same save.
func sortDetailed(rows []DetailedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if absDuration(a.Timestamp.Sub(b.Timestamp)) > consolidationWindow {
			return a.Timestamp.After(b.Timestamp)
		}

		ga, gb := fieldGroup(a.Field), fieldGroup(b.Field)
		if ga != gb {
			return ga < gb
		}

		return !isStatusField(a.Field) && isStatusField(b.Field)
	})
}
