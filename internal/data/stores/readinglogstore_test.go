package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingLogStore_OpenAndClose(t *testing.T) {
	store := NewReadingLogStore(openTestDB(t))
	ctx := context.Background()

	id, err := store.Open(ctx, "book-1", "The Long Voyage")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, store.Close(ctx, id, 3, 12))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "book-1", entry.BookID)
	assert.Equal(t, "The Long Voyage", entry.Title)
	assert.Equal(t, 3, entry.LastWindow)
	assert.Equal(t, 12, entry.LastPage)
	require.NotNil(t, entry.ClosedAt)
	assert.False(t, entry.OpenedAt.IsZero())
}

func TestReadingLogStore_Close_unknownID(t *testing.T) {
	store := NewReadingLogStore(openTestDB(t))

	err := store.Close(context.Background(), "nope", 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadingLogStore_Recent_ordersNewestFirst(t *testing.T) {
	store := NewReadingLogStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Open(ctx, "book-1", "First")
	require.NoError(t, err)
	_, err = store.Open(ctx, "book-2", "Second")
	require.NoError(t, err)

	entries, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "book-2", entries[0].BookID)
}

func TestReadingLogStore_LastOpened(t *testing.T) {
	store := NewReadingLogStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.LastOpened(ctx, "book-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Open(ctx, "book-1", "Title")
	require.NoError(t, err)

	opened, err := store.LastOpened(ctx, "book-1")
	require.NoError(t, err)
	assert.False(t, opened.IsZero())
}
