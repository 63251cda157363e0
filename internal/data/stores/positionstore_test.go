package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifters/RiftedReader-sub002/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestPositionStore_SaveAndGet(t *testing.T) {
	store := NewPositionStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Position{BookID: "book-1", WindowID: 2, Page: 14}))

	p, err := store.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.WindowID)
	assert.Equal(t, 14, p.Page)
	assert.False(t, p.Completed)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestPositionStore_SaveUpserts(t *testing.T) {
	store := NewPositionStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Position{BookID: "book-1", WindowID: 0, Page: 0}))
	require.NoError(t, store.Save(ctx, Position{BookID: "book-1", WindowID: 4, Page: 9, Completed: true}))

	p, err := store.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.WindowID)
	assert.Equal(t, 9, p.Page)
	assert.True(t, p.Completed)
}

func TestPositionStore_Get_missingIsNotFound(t *testing.T) {
	store := NewPositionStore(openTestDB(t))

	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPositionStore_Delete(t *testing.T) {
	store := NewPositionStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Position{BookID: "book-1", WindowID: 1, Page: 3}))
	require.NoError(t, store.Delete(ctx, "book-1"))

	_, err := store.Get(ctx, "book-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "book-1"), ErrNotFound)
}

func TestPositionStore_SavePosition_saverContract(t *testing.T) {
	store := NewPositionStore(openTestDB(t))

	require.NoError(t, store.SavePosition("book-1", 3, 5, true))

	p, err := store.Get(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.WindowID)
	assert.Equal(t, 5, p.Page)
	assert.True(t, p.Completed)
}
