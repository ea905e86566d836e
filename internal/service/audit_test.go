package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grbod/labtrack/internal/domain"
)

func seedTrail(t *testing.T, audit *memAuditRepo) {
	t.Helper()
	base := time.Date(2026, 3, 5, 13, 45, 0, 0, time.UTC)
	entries := []domain.AuditEntry{
		{
			TableName: "lots", RecordID: 7, Action: domain.ActionInsert,
			Username: "alice", Timestamp: base,
			Changes: []domain.FieldChange{
				{Field: "Lot Number", NewValue: "L1"},
				{Field: "Product Name", NewValue: "Whey"},
			},
		},
		{
			TableName: "lots", RecordID: 7, Action: domain.ActionUpdate,
			Username: "alice", Timestamp: base.Add(2 * time.Second),
			Changes: []domain.FieldChange{
				{Field: "Product Name", OldValue: "Whey", NewValue: "Whey Isolate"},
			},
			Reason: "label correction",
		},
	}
	for i := range entries {
		require.NoError(t, audit.Insert(t.Context(), &entries[i]))
	}
}

func TestAuditService_Trails(t *testing.T) {
	t.Parallel()

	t.Run("detailed trail flattens changes", func(t *testing.T) {
		t.Parallel()
		audit := &memAuditRepo{}
		seedTrail(t, audit)
		svc := NewAuditService(audit)

		rows, err := svc.DetailedTrail(t.Context(), "lots", 7)
		require.NoError(t, err)
		require.Len(t, rows, 3)
	})

	t.Run("summary trail consolidates", func(t *testing.T) {
		t.Parallel()
		audit := &memAuditRepo{}
		seedTrail(t, audit)
		svc := NewAuditService(audit)

		rows, err := svc.SummaryTrail(t.Context(), "lots", 7)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2 fields initialized", rows[0].Field)
	})

	t.Run("unknown table rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewAuditService(&memAuditRepo{})
		_, err := svc.DetailedTrail(t.Context(), "users", 1)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("non-positive record id rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewAuditService(&memAuditRepo{})
		_, err := svc.SummaryTrail(t.Context(), "lots", 0)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAuditService_ExportCSV(t *testing.T) {
	t.Parallel()

	audit := &memAuditRepo{}
	seedTrail(t, audit)
	svc := NewAuditService(audit)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(t.Context(), "lots", 7, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + three rows
	assert.Equal(t, []string{"Time", "User", "Action", "Field", "Old Value", "New Value", "Reason"}, records[0])

	// The update row carries the reason; display time uses the trail format.
	var updateRow []string
	for _, rec := range records[1:] {
		if rec[2] == "update" {
			updateRow = rec
		}
	}
	require.NotNil(t, updateRow)
	assert.Equal(t, "Mar 05 26 13:45", updateRow[0])
	assert.Equal(t, "alice", updateRow[1])
	assert.Equal(t, "Product Name", updateRow[3])
	assert.Equal(t, "label correction", updateRow[6])
}

func TestAnnotationService(t *testing.T) {
	t.Parallel()

	newFixture := func(t *testing.T) (*AnnotationService, *memAuditRepo) {
		t.Helper()
		audit := &memAuditRepo{}
		seedTrail(t, audit)
		return NewAnnotationService(&memAnnotationRepo{}, audit), audit
	}

	t.Run("adds annotation to existing entry", func(t *testing.T) {
		t.Parallel()
		svc, _ := newFixture(t)
		a, err := svc.Add(authedCtx("bob"), 1, "verified against raw data")
		require.NoError(t, err)
		assert.Equal(t, "bob", a.Username)
		assert.Equal(t, int64(1), a.AuditID)
	})

	t.Run("anonymous annotation refused", func(t *testing.T) {
		t.Parallel()
		svc, _ := newFixture(t)
		_, err := svc.Add(t.Context(), 1, "note")
		var derr *domain.AccessDeniedError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("blank body refused", func(t *testing.T) {
		t.Parallel()
		svc, _ := newFixture(t)
		_, err := svc.Add(authedCtx("bob"), 1, "   ")
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("missing entry refused", func(t *testing.T) {
		t.Parallel()
		svc, _ := newFixture(t)
		_, err := svc.Add(authedCtx("bob"), 999, "note")
		var nerr *domain.NotFoundError
		assert.ErrorAs(t, err, &nerr)
	})
}
