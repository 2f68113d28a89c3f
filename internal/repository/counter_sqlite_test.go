package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "motos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteCounterStore(t *testing.T) {
	store := NewSQLiteCounterStore(openTestSQLite(t), testPolicy, newTestLogger())
	ctx := context.Background()

	c, err := store.Get(ctx, "quotations-2024")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = store.Update(ctx, "quotations-2024", increment(2024))
	require.NoError(t, err)
	assert.Equal(t, 1, c.SequenceValue)
	assert.Equal(t, int64(1), c.Version)

	stored, err := store.Get(ctx, "quotations-2024")
	require.NoError(t, err)
	assert.Equal(t, 2024, stored.Year)
	assert.Equal(t, 1, stored.SequenceValue)
	assert.WithinDuration(t, c.LastUpdated, stored.LastUpdated, 0)
}

func TestSQLiteCounterStore_Concurrent(t *testing.T) {
	store := NewSQLiteCounterStore(openTestSQLite(t), testPolicy, newTestLogger())
	assertConcurrentIncrements(t, store, "quotations-2024", 25)
}

func TestSQLiteCounterStore_KeysAreIndependent(t *testing.T) {
	store := NewSQLiteCounterStore(openTestSQLite(t), testPolicy, newTestLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Update(ctx, "quotations-2024", increment(2024))
		require.NoError(t, err)
	}
	c, err := store.Update(ctx, "quotations-2025", increment(2025))
	require.NoError(t, err)
	assert.Equal(t, 1, c.SequenceValue)
}
