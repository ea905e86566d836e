package service

import (
	"fmt"

	"github.com/grbod/labtrack/internal/domain"
)

// changeSet accumulates field-level diffs for an audit entry. Helpers
// append a change only when the old and new values actually differ, so
// a no-op update produces an empty set.
type changeSet struct {
	changes []domain.FieldChange
}

func (c *changeSet) str(field, oldVal, newVal string) {
	if oldVal == newVal {
		return
	}
	c.changes = append(c.changes, domain.FieldChange{Field: field, OldValue: oldVal, NewValue: newVal})
}

func (c *changeSet) floatPtr(field string, oldVal, newVal *float64) {
	c.str(field, formatFloatPtr(oldVal), formatFloatPtr(newVal))
}

// initial records a field on a freshly created record. Empty values are
// skipped so creation entries list only what was actually set.
func (c *changeSet) initial(field, value string) {
	if value == "" {
		return
	}
	c.changes = append(c.changes, domain.FieldChange{Field: field, NewValue: value})
}

func (c *changeSet) empty() bool { return len(c.changes) == 0 }

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}
