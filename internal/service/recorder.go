// Package service implements LabTrack business logic: lot and test-result
// lifecycles, COA issuance, customer records, and the audit trail that
// every write feeds.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

// Recorder writes audit entries on behalf of the services. Recording is
// best-effort: a failed audit write is logged but never fails the
// business operation that triggered it.
type Recorder struct {
	repo   domain.AuditRepository
	logger *slog.Logger
}

// NewRecorder creates a Recorder. A nil repo disables recording, which
// keeps service constructors usable in tests that don't assert on audit
// output.
func NewRecorder(repo domain.AuditRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record persists one audit entry, stamping the actor from the request
// context and the timestamp when unset.
func (r *Recorder) Record(ctx context.Context, e *domain.AuditEntry) {
	if r == nil || r.repo == nil {
		return
	}
	if e.Username == "" {
		e.Username = domain.UsernameFromContext(ctx)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		r.logger.Warn("audit record failed",
			"table", e.TableName,
			"record_id", e.RecordID,
			"action", e.Action,
			"error", err,
		)
	}
}
