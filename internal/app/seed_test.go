package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grbod/labtrack/internal/db"
	"github.com/grbod/labtrack/internal/db/repository"
)

func TestSeedTestMethods(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.DiscardHandler)

	t.Run("embedded catalog seeds and is idempotent", func(t *testing.T) {
		t.Parallel()
		writeDB, _ := db.OpenTestSQLite(t)
		repo := repository.NewTestMethodRepo(writeDB)

		require.NoError(t, seedTestMethods(context.Background(), repo, "", logger))
		methods, err := repo.List(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, methods)
		count := len(methods)

		lead, err := repo.GetByName(context.Background(), "Lead")
		require.NoError(t, err)
		assert.Equal(t, "ppm", lead.Unit)
		assert.Equal(t, "ICP-MS", lead.Method)
		require.NotNil(t, lead.SpecMax)
		assert.Equal(t, 0.5, *lead.SpecMax)

		// Second run updates in place rather than duplicating.
		require.NoError(t, seedTestMethods(context.Background(), repo, "", logger))
		methods, err = repo.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, methods, count)
	})

	t.Run("override file wins", func(t *testing.T) {
		t.Parallel()
		writeDB, _ := db.OpenTestSQLite(t)
		repo := repository.NewTestMethodRepo(writeDB)

		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"methods:\n  - name: Gluten\n    unit: ppm\n    method: ELISA\n    spec_max: 20\n"), 0o600))

		require.NoError(t, seedTestMethods(context.Background(), repo, path, logger))
		methods, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, methods, 1)
		assert.Equal(t, "Gluten", methods[0].Name)
	})

	t.Run("unnamed method rejected", func(t *testing.T) {
		t.Parallel()
		writeDB, _ := db.OpenTestSQLite(t)
		repo := repository.NewTestMethodRepo(writeDB)

		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("methods:\n  - unit: ppm\n"), 0o600))
		assert.Error(t, seedTestMethods(context.Background(), repo, path, logger))
	})
}
