package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grbod/labtrack/internal/domain"
)

func authedCtx(name string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.Principal{Name: name, Type: "user"})
}

func newLotFixture(t *testing.T) (*LotService, *lotStore, *memAuditRepo) {
	t.Helper()
	store := newLotStore()
	audit := &memAuditRepo{}
	return NewLotService(store, audit, discardLogger()), store, audit
}

func TestLotService_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates pending lot with creation entry", func(t *testing.T) {
		t.Parallel()
		svc, _, audit := newLotFixture(t)

		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{
			LotNumber:   "LOT-2026-001",
			ProductName: "Protein Powder",
			Quantity:    500,
			Unit:        "kg",
			Notes:       "first batch",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LotStatusPending, lot.Status)

		entries := audit.forTable("lots")
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, domain.ActionInsert, e.Action)
		assert.Equal(t, "alice", e.Username)
		fields := changeFields(e.Changes)
		assert.Contains(t, fields, "Lot Number")
		assert.Contains(t, fields, "Product Name")
		assert.Contains(t, fields, "Quantity")
		assert.Contains(t, fields, "Status")
	})

	t.Run("rejects missing lot number", func(t *testing.T) {
		t.Parallel()
		svc, _, audit := newLotFixture(t)

		_, err := svc.Create(authedCtx("alice"), &domain.Lot{ProductName: "X"})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Empty(t, audit.forTable("lots"))
	})
}

func TestLotService_Update(t *testing.T) {
	t.Parallel()

	t.Run("records only changed fields", func(t *testing.T) {
		t.Parallel()
		svc, _, audit := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{
			LotNumber: "L1", ProductName: "Whey", Quantity: 100, Unit: "kg",
		})
		require.NoError(t, err)

		name := "Whey Isolate"
		same := 100.0
		_, err = svc.Update(authedCtx("bob"), lot.ID, domain.LotUpdate{
			ProductName: &name,
			Quantity:    &same,
		}, "label correction")
		require.NoError(t, err)

		entries := audit.forTable("lots")
		require.Len(t, entries, 2)
		upd := entries[1]
		assert.Equal(t, domain.ActionUpdate, upd.Action)
		assert.Equal(t, "bob", upd.Username)
		assert.Equal(t, "label correction", upd.Reason)
		require.Len(t, upd.Changes, 1)
		assert.Equal(t, "Product Name", upd.Changes[0].Field)
		assert.Equal(t, "Whey", upd.Changes[0].OldValue)
		assert.Equal(t, "Whey Isolate", upd.Changes[0].NewValue)
	})

	t.Run("no-op update records nothing", func(t *testing.T) {
		t.Parallel()
		svc, _, audit := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)

		same := "Whey"
		_, err = svc.Update(authedCtx("alice"), lot.ID, domain.LotUpdate{ProductName: &same}, "")
		require.NoError(t, err)
		assert.Len(t, audit.forTable("lots"), 1)
	})

	t.Run("released lot is frozen", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)
		lot.Status = domain.LotStatusReleased
		require.NoError(t, store.Update(context.Background(), lot))

		name := "changed"
		_, err = svc.Update(authedCtx("alice"), lot.ID, domain.LotUpdate{ProductName: &name}, "")
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestLotService_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("approve from in_testing", func(t *testing.T) {
		t.Parallel()
		svc, store, audit := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)
		lot.Status = domain.LotStatusInTesting
		require.NoError(t, store.Update(context.Background(), lot))

		approved, err := svc.Approve(authedCtx("qa-lead"), lot.ID, "all specs met")
		require.NoError(t, err)
		assert.Equal(t, domain.LotStatusApproved, approved.Status)

		entries := audit.forTable("lots")
		last := entries[len(entries)-1]
		assert.Equal(t, domain.ActionApprove, last.Action)
		assert.Equal(t, "all specs met", last.Reason)
		require.Len(t, last.Changes, 1)
		assert.Equal(t, "Status", last.Changes[0].Field)
		assert.Equal(t, domain.LotStatusInTesting, last.Changes[0].OldValue)
		assert.Equal(t, domain.LotStatusApproved, last.Changes[0].NewValue)
	})

	t.Run("approve from pending fails", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)

		_, err = svc.Approve(authedCtx("qa-lead"), lot.ID, "")
		var cerr *domain.ConflictError
		assert.ErrorAs(t, err, &cerr)
	})

	t.Run("reject from in_testing", func(t *testing.T) {
		t.Parallel()
		svc, store, audit := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)
		lot.Status = domain.LotStatusInTesting
		require.NoError(t, store.Update(context.Background(), lot))

		rejected, err := svc.Reject(authedCtx("qa-lead"), lot.ID, "heavy metals out of spec")
		require.NoError(t, err)
		assert.Equal(t, domain.LotStatusRejected, rejected.Status)

		entries := audit.forTable("lots")
		assert.Equal(t, domain.ActionReject, entries[len(entries)-1].Action)
	})
}

func TestLotService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("records delete entry with reason", func(t *testing.T) {
		t.Parallel()
		svc, _, audit := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(authedCtx("alice"), lot.ID, "duplicate entry"))

		entries := audit.forTable("lots")
		last := entries[len(entries)-1]
		assert.Equal(t, domain.ActionDelete, last.Action)
		assert.Equal(t, "duplicate entry", last.Reason)
		assert.Empty(t, last.Changes)
	})

	t.Run("released lot cannot be deleted", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newLotFixture(t)
		lot, err := svc.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
		require.NoError(t, err)
		lot.Status = domain.LotStatusReleased
		require.NoError(t, store.Update(context.Background(), lot))

		err = svc.Delete(authedCtx("alice"), lot.ID, "")
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func changeFields(changes []domain.FieldChange) []string {
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	return fields
}
