package domain

import "time"

// AuditAction enumerates the recorded mutation kinds.
type AuditAction string

const (
	ActionInsert           AuditAction = "insert"
	ActionUpdate           AuditAction = "update"
	ActionDelete           AuditAction = "delete"
	ActionApprove          AuditAction = "approve"
	ActionReject           AuditAction = "reject"
	ActionValidationFailed AuditAction = "validation_failed"
)

// FieldChange is one field-level diff inside an audit entry. Old/NewValue
// are opaque; OldDisplay/NewDisplay, when set, are pre-formatted strings
// that take precedence over the raw values for presentation.
type FieldChange struct {
	Field      string      `json:"field"`
	OldValue   interface{} `json:"old_value,omitempty"`
	NewValue   interface{} `json:"new_value,omitempty"`
	OldDisplay string      `json:"old_display,omitempty"`
	NewDisplay string      `json:"new_display,omitempty"`
}

// AuditEntry is one recorded database mutation event with optional
// field-level diffs. Entries for a record are returned ordered by
// Timestamp; IDs increase monotonically with insertion order.
type AuditEntry struct {
	ID              int64
	TableName       string
	RecordID        int64
	Action          AuditAction
	Timestamp       time.Time
	Username        string // empty for system-generated entries
	Changes         []FieldChange
	Reason          string
	IsBulkOperation bool
	BulkSummary     string
	AnnotationCount int
}

// AuditFilter narrows audit list queries.
type AuditFilter struct {
	TableName *string
	RecordID  *int64
	Username  *string
	Action    *string
	Page      PageRequest
}

// Annotation is a comment attached to a specific audit entry.
type Annotation struct {
	ID        int64
	AuditID   int64
	Username  string
	Body      string
	CreatedAt time.Time
}
