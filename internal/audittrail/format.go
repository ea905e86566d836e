// Package audittrail transforms raw audit entries into display rows.
//
// Two views are produced from the same ordered entry sequence: a detailed
// view with one row per field change (Flatten) and a summary view that
// collapses rapid successive edits into semantic groups (Consolidate).
// Both transforms are pure: no I/O, no clock reads, deterministic output
// for a given input.
package audittrail

import (
	"fmt"
	"strings"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

// NoAnnotations marks rows that must not render an annotation control.
// Zero is a legitimate count, so a sentinel is needed.
const NoAnnotations = -1

// consolidationWindow is the interval within which successive updates by
// the same actor merge into one summary group. It also bounds the
// timestamp clustering used by the detailed-view sort.
const consolidationWindow = 5000 * time.Millisecond

// FieldSeparator splits compound field labels like "E. coli › Result
// Value" into a group prefix and a sub-field. Writers emitting compound
// labels use the same literal; it is matched as an opaque token.
const FieldSeparator = " › "

// placeholder renders in place of an empty value so no row is emitted
// with both an empty field and empty old/new values.
const placeholder = "—"

// displayTimeLayout is a fixed-width, locale-independent timestamp:
// month, day, two-digit year, 24-hour time.
const displayTimeLayout = "Jan 02 06 15:04"

// formatValue renders an opaque change value for display. Booleans become
// Yes/No, nil becomes the empty string, structured values keep their
// literal text representation, everything else its string form.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// oldDisplay returns the display string for a change's old value,
// preferring the pre-formatted form when present.
func oldDisplay(c domain.FieldChange) string {
	if c.OldDisplay != "" {
		return c.OldDisplay
	}
	return formatValue(c.OldValue)
}

// newDisplay returns the display string for a change's new value.
func newDisplay(c domain.FieldChange) string {
	if c.NewDisplay != "" {
		return c.NewDisplay
	}
	return formatValue(c.NewValue)
}

// normalizeField lowers a field label and treats underscores as spaces.
// Used for substring matching only, never for display.
func normalizeField(field string) string {
	return strings.ToLower(strings.ReplaceAll(field, "_", " "))
}

// isStatusField reports whether a field label names a status column.
func isStatusField(field string) bool {
	return strings.Contains(normalizeField(field), "status")
}

// fieldGroup returns the text preceding the separator token, or the whole
// label when no separator is present.
func fieldGroup(field string) string {
	if idx := strings.Index(field, FieldSeparator); idx >= 0 {
		return field[:idx]
	}
	return field
}

// orPlaceholder substitutes the em-dash for empty display values.
func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// displayTime renders an entry timestamp in the fixed display format.
func displayTime(t time.Time) string {
	return t.Format(displayTimeLayout)
}

// absDuration returns the magnitude of d.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
