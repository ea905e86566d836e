package audittrail

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

// ConsolidatedRow is one line of the summary audit view. A row may fold
// several raw field changes (ConsolidatedCount) across one or more audit
// entries (AuditIDs).
type ConsolidatedRow struct {
	AuditIDs          []int64            `json:"audit_ids"`
	Action            domain.AuditAction `json:"action"`
	Username          string             `json:"username,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
	DisplayTime       string             `json:"display_time"`
	Field             string             `json:"field"`
	OldValue          string             `json:"old_value"`
	NewValue          string             `json:"new_value"`
	Reason            string             `json:"reason,omitempty"`
	ConsolidatedCount int                `json:"consolidated_count"`
	AnnotationCount   int                `json:"annotation_count"`
}

// reasonTestName extracts a test name from reasons shaped like
// "Test result created: Lead" or "Test result updated: pH".
var reasonTestName = regexp.MustCompile(`Test result (?:created|updated|update):\s*(.+)`)

// Consolidate groups raw audit entries into fewer, semantically
// meaningful rows: record-creation field sets are summarized, rapid
// successive updates by the same user merge within the consolidation
// window, and status transitions stay individually visible.
//
// The input is consumed in a single forward pass in display order; rows
// are emitted in input order.
func Consolidate(entries []domain.AuditEntry) []ConsolidatedRow {
	var rows []ConsolidatedRow

	for i := 0; i < len(entries); {
		e := entries[i]
		switch e.Action {
		case domain.ActionInsert:
			rows = append(rows, consolidateInsert(e))
			i++
		case domain.ActionUpdate:
			j := updateWindowEnd(entries, i)
			rows = append(rows, consolidateUpdates(entries[i:j])...)
			i = j
		default:
			rows = append(rows, consolidateOther(e))
			i++
		}
	}

	return rows
}

// updateWindowEnd looks ahead from i+1 while the next entry is also an
// update by the same user within the consolidation window of the anchor
// entry's timestamp. The window is always measured from entries[i], not
// chained from the previous lookahead entry.
func updateWindowEnd(entries []domain.AuditEntry, i int) int {
	anchor := entries[i]
	j := i + 1
	for j < len(entries) {
		next := entries[j]
		if next.Action != domain.ActionUpdate {
			break
		}
		if !sameActor(anchor.Username, next.Username) {
			break
		}
		if absDuration(next.Timestamp.Sub(anchor.Timestamp)) > consolidationWindow {
			break
		}
		j++
	}
	return j
}

// sameActor reports whether two usernames identify the same actor.
// System entries (empty username) never merge with anything.
func sameActor(a, b string) bool {
	return a != "" && a == b
}

// consolidateInsert emits the single summary row for an insert entry.
func consolidateInsert(e domain.AuditEntry) ConsolidatedRow {
	row := ConsolidatedRow{
		AuditIDs:          []int64{e.ID},
		Action:            e.Action,
		Username:          e.Username,
		Timestamp:         e.Timestamp,
		DisplayTime:       displayTime(e.Timestamp),
		Reason:            e.Reason,
		ConsolidatedCount: 1,
		AnnotationCount:   e.AnnotationCount,
		OldValue:          placeholder,
		NewValue:          placeholder,
	}

	if len(e.Changes) == 0 {
		row.Field = "Record created"
		return row
	}

	if isTestCreation(e.Changes) {
		name := testName(e)
		row.Field = fmt.Sprintf("%s (%d fields)", name, len(e.Changes))
		row.NewValue = testCreationValue(e.Changes)
		row.ConsolidatedCount = len(e.Changes)
		return row
	}

	if len(e.Changes) == 1 {
		c := e.Changes[0]
		row.Field = c.Field
		row.OldValue = orPlaceholder(oldDisplay(c))
		row.NewValue = orPlaceholder(newDisplay(c))
		return row
	}

	row.Field = fmt.Sprintf("%d fields initialized", len(e.Changes))
	row.ConsolidatedCount = len(e.Changes)
	return row
}

// isTestCreation reports whether an insert's change set looks like a
// test-result creation: any field label matching "test type", "result",
// or "method".
func isTestCreation(changes []domain.FieldChange) bool {
	for _, c := range changes {
		f := normalizeField(c.Field)
		if strings.Contains(f, "test type") ||
			strings.Contains(f, "result") ||
			strings.Contains(f, "method") {
			return true
		}
	}
	return false
}

// testName extracts the test name for a test-result creation row, trying
// in order: a compound field-label prefix, the "test type" field's value,
// a match against the entry reason, and finally the literal "Test".
func testName(e domain.AuditEntry) string {
	for _, c := range e.Changes {
		if strings.Contains(c.Field, FieldSeparator) {
			return fieldGroup(c.Field)
		}
	}
	for _, c := range e.Changes {
		if strings.Contains(normalizeField(c.Field), "test type") {
			if v := newDisplay(c); v != "" {
				return v
			}
		}
	}
	if m := reasonTestName.FindStringSubmatch(e.Reason); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "Test"
}

// testCreationValue builds the value string for a test-result creation
// from recognized sub-fields in fixed order: result value, plus unit if
// present, then method in parentheses.
func testCreationValue(changes []domain.FieldChange) string {
	var result, unit, method string
	for _, c := range changes {
		f := normalizeField(c.Field)
		switch {
		case strings.Contains(f, "test type"):
			// identifies the test, not part of the value string
		case strings.Contains(f, "unit"):
			if unit == "" {
				unit = newDisplay(c)
			}
		case strings.Contains(f, "method"):
			if method == "" {
				method = newDisplay(c)
			}
		case strings.Contains(f, "result"):
			if result == "" {
				result = newDisplay(c)
			}
		}
	}

	value := result
	if value != "" && unit != "" {
		value += " " + unit
	}
	if method != "" {
		if value != "" {
			value += " (" + method + ")"
		} else {
			value = "(" + method + ")"
		}
	}
	if value == "" {
		return "(created)"
	}
	return value
}

// mergedChange accumulates the earliest old value and latest new value
// seen for one field across an update window.
type mergedChange struct {
	field string
	old   string
	new   string
}

// consolidateUpdates merges the changes of an update window into display
// rows: one per surviving non-status field, one per status transition,
// or a single "(no effective changes)" row when every diff was a no-op.
func consolidateUpdates(window []domain.AuditEntry) []ConsolidatedRow {
	anchor := window[0]

	auditIDs := make([]int64, 0, len(window))
	annotations := 0
	for _, e := range window {
		auditIDs = append(auditIDs, e.ID)
		annotations += e.AnnotationCount
	}

	// Merge field changes across the window: drop no-op diffs, keep the
	// earliest old value and the latest new value per field.
	var order []string
	merged := make(map[string]*mergedChange)
	for _, e := range window {
		for _, c := range e.Changes {
			oldVal, newVal := oldDisplay(c), newDisplay(c)
			if oldVal == newVal {
				continue
			}
			if m, ok := merged[c.Field]; ok {
				m.new = newVal
				continue
			}
			merged[c.Field] = &mergedChange{field: c.Field, old: oldVal, new: newVal}
			order = append(order, c.Field)
		}
	}

	var nonStatus, status []*mergedChange
	for _, field := range order {
		m := merged[field]
		if isStatusField(field) {
			status = append(status, m)
		} else {
			nonStatus = append(nonStatus, m)
		}
	}

	base := ConsolidatedRow{
		AuditIDs:          auditIDs,
		Action:            anchor.Action,
		Username:          anchor.Username,
		Timestamp:         anchor.Timestamp,
		DisplayTime:       displayTime(anchor.Timestamp),
		ConsolidatedCount: 1,
		AnnotationCount:   NoAnnotations,
	}

	if len(nonStatus) == 0 && len(status) == 0 {
		row := base
		row.Field = "(no effective changes)"
		row.OldValue = placeholder
		row.NewValue = placeholder
		row.Reason = anchor.Reason
		row.AnnotationCount = annotations
		return []ConsolidatedRow{row}
	}

	rows := make([]ConsolidatedRow, 0, len(nonStatus)+len(status))
	emit := func(m *mergedChange) {
		row := base
		row.Field = m.field
		row.OldValue = orPlaceholder(m.old)
		row.NewValue = orPlaceholder(m.new)
		rows = append(rows, row)
	}
	for _, m := range nonStatus {
		emit(m)
	}
	// Status transitions stay individually visible with count 1.
	for _, m := range status {
		emit(m)
	}

	// Reason and the combined annotation count belong to the first row
	// of the group only, so annotations are never double-counted.
	rows[0].Reason = anchor.Reason
	rows[0].AnnotationCount = annotations
	return rows
}

// consolidateOther emits the single row for approve, reject, delete,
// validation_failed, and unrecognized actions.
func consolidateOther(e domain.AuditEntry) ConsolidatedRow {
	row := ConsolidatedRow{
		AuditIDs:          []int64{e.ID},
		Action:            e.Action,
		Username:          e.Username,
		Timestamp:         e.Timestamp,
		DisplayTime:       displayTime(e.Timestamp),
		Reason:            e.Reason,
		ConsolidatedCount: 1,
		AnnotationCount:   e.AnnotationCount,
		OldValue:          placeholder,
		NewValue:          placeholder,
	}

	switch {
	case e.IsBulkOperation && e.BulkSummary != "":
		row.Field = e.BulkSummary
	case len(e.Changes) > 0:
		c := e.Changes[0]
		row.Field = c.Field
		row.OldValue = orPlaceholder(oldDisplay(c))
		row.NewValue = orPlaceholder(newDisplay(c))
	default:
		row.Field = actionLabel(e.Action)
	}

	return row
}

// actionLabel maps changeless actions to their fixed display labels.
func actionLabel(action domain.AuditAction) string {
	switch action {
	case domain.ActionApprove:
		return "Record approved"
	case domain.ActionReject:
		return "Record rejected"
	case domain.ActionDelete:
		return "Record deleted"
	default:
		label := strings.ReplaceAll(string(action), "_", " ")
		if label == "" {
			return placeholder
		}
		return strings.ToUpper(label[:1]) + label[1:]
	}
}
