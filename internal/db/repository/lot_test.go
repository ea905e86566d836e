package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grbod/labtrack/internal/db"
	"github.com/grbod/labtrack/internal/domain"
)

func TestLotRepo_CRUD(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLotRepo(writeDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Lot{
		LotNumber:   "LOT-2025-001",
		ProductName: "Vitamin C 500mg",
		Quantity:    1000,
		Unit:        "bottles",
		Status:      domain.LotStatusPending,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.LotStatusPending, created.Status)

	t.Run("duplicate_lot_number_conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, &domain.Lot{
			LotNumber:   "LOT-2025-001",
			ProductName: "Other",
			Status:      domain.LotStatusPending,
		})
		var cerr *domain.ConflictError
		assert.ErrorAs(t, err, &cerr)
	})

	t.Run("update_and_get", func(t *testing.T) {
		created.Status = domain.LotStatusInTesting
		created.Notes = "sampling started"
		require.NoError(t, repo.Update(ctx, created))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LotStatusInTesting, got.Status)
		assert.Equal(t, "sampling started", got.Notes)
	})

	t.Run("get_missing_is_not_found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		var nerr *domain.NotFoundError
		assert.ErrorAs(t, err, &nerr)
	})

	t.Run("delete", func(t *testing.T) {
		other, err := repo.Create(ctx, &domain.Lot{
			LotNumber: "LOT-2025-002", ProductName: "Zinc", Status: domain.LotStatusPending,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, other.ID))

		var nerr *domain.NotFoundError
		_, err = repo.GetByID(ctx, other.ID)
		assert.ErrorAs(t, err, &nerr)
		assert.ErrorAs(t, repo.Delete(ctx, other.ID), &nerr)
	})
}

func TestLotRepo_ListFilters(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewLotRepo(writeDB)
	customers := NewCustomerRepo(writeDB)
	ctx := context.Background()

	acme, err := customers.Create(ctx, &domain.Customer{Name: "Acme Nutraceuticals"})
	require.NoError(t, err)

	for _, l := range []domain.Lot{
		{LotNumber: "A-1", ProductName: "P1", Status: domain.LotStatusPending, CustomerID: &acme.ID},
		{LotNumber: "A-2", ProductName: "P2", Status: domain.LotStatusApproved, CustomerID: &acme.ID},
		{LotNumber: "A-3", ProductName: "P3", Status: domain.LotStatusApproved},
	} {
		lot := l
		_, err := repo.Create(ctx, &lot)
		require.NoError(t, err)
	}

	t.Run("by_status", func(t *testing.T) {
		approved := domain.LotStatusApproved
		lots, total, err := repo.List(ctx, domain.LotFilter{Status: &approved})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, lots, 2)
	})

	t.Run("by_customer", func(t *testing.T) {
		lots, total, err := repo.List(ctx, domain.LotFilter{CustomerID: &acme.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, lots, 2)
	})

	t.Run("unfiltered", func(t *testing.T) {
		_, total, err := repo.List(ctx, domain.LotFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}
