// Package stores provides the SQLite-backed persistence layer: reading
// positions and the reading log.
package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/rifters/RiftedReader-sub002/internal/data/db"
)

// Position is the saved reading position for one book.
type Position struct {
	BookID    string
	WindowID  int
	Page      int
	Completed bool
	UpdatedAt time.Time
}

// PositionStore persists reading positions, one row per book.
type PositionStore struct {
	db *db.DB
}

// NewPositionStore creates a SQLite-backed position store.
func NewPositionStore(db *db.DB) *PositionStore {
	return &PositionStore{db: db}
}

// Save creates or updates the position for a book.
func (s *PositionStore) Save(ctx context.Context, p Position) error {
	completed := 0
	if p.Completed {
		completed = 1
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO positions (book_id, window_id, page, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			window_id  = excluded.window_id,
			page       = excluded.page,
			completed  = excluded.completed,
			updated_at = excluded.updated_at
	`, p.BookID, p.WindowID, p.Page, completed, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}

	return nil
}

// Get returns the saved position for a book. Returns ErrNotFound when the
// book has never been opened.
func (s *PositionStore) Get(ctx context.Context, bookID string) (Position, error) {
	var (
		p         Position
		completed int
		updatedAt int64
	)
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT book_id, window_id, page, completed, updated_at
		FROM positions WHERE book_id = ?
	`, bookID).Scan(&p.BookID, &p.WindowID, &p.Page, &completed, &updatedAt)
	if IsNotFoundError(err) {
		return Position{}, ErrNotFound
	}
	if err != nil {
		return Position{}, fmt.Errorf("failed to get position: %w", err)
	}

	p.Completed = completed != 0
	p.UpdatedAt = time.Unix(0, updatedAt)
	return p, nil
}

// Delete removes the saved position for a book. Returns ErrNotFound when no
// position exists.
func (s *PositionStore) Delete(ctx context.Context, bookID string) error {
	res, err := s.db.Conn().ExecContext(ctx, "DELETE FROM positions WHERE book_id = ?", bookID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SavePosition adapts the store to the reading session's saver contract.
func (s *PositionStore) SavePosition(bookID string, windowID, page int, completed bool) error {
	return s.Save(context.Background(), Position{
		BookID:    bookID,
		WindowID:  windowID,
		Page:      page,
		Completed: completed,
	})
}
