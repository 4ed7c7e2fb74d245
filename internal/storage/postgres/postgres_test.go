package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/mountains-api/internal/config"
	"github.com/aanand-mishra/mountains-api/internal/storage"
	"github.com/aanand-mishra/mountains-api/internal/types"
)

// Set MOUNTAINS_TEST_POSTGRES_DSN to a scratch database to run these tests.
func newTestStorage(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("MOUNTAINS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MOUNTAINS_TEST_POSTGRES_DSN not set")
	}

	cfg := &config.Config{
		Storage: config.Storage{
			Driver:       config.DriverPostgres,
			DSN:          dsn,
			MaxOpenConns: 4,
			MaxIdleConns: 1,
		},
	}

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	return p
}

func TestNew_InvalidDSN(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Storage: config.Storage{DSN: "postgres://%zz", MaxOpenConns: 1}}

	_, err := New(context.Background(), cfg)
	require.ErrorContains(t, err, "parse dsn")
}

func TestPostgres_CRUD(t *testing.T) {
	ctx := context.Background()
	p := newTestStorage(t)

	id, err := p.CreateMountain(ctx, "Everest", 8849, "Nepal")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.DeleteMountainByID(context.Background(), id) })

	got, err := p.GetMountainsByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []types.Mountain{{ID: id, Name: "Everest", Height: 8849, Location: "Nepal"}}, got)

	updated, err := p.UpdateMountainByID(ctx, id, types.Mountain{Name: "Everest", Height: 8850, Location: "Nepal"})
	require.NoError(t, err)
	assert.InDelta(t, 8850, updated.Height, 0)

	all, err := p.GetMountains(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)

	require.NoError(t, p.DeleteMountainByID(ctx, id))
	require.ErrorIs(t, p.DeleteMountainByID(ctx, id), storage.ErrNotFound)

	_, err = p.UpdateMountainByID(ctx, id, types.Mountain{Name: "X", Height: 1, Location: "Y"})
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err = p.GetMountainsByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
