package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rifters/RiftedReader-sub002/internal/data/db"
	"github.com/rifters/RiftedReader-sub002/pkg/randid"
)

// LogEntry is one reading-log row: a span between opening and closing a book.
type LogEntry struct {
	ID         string
	BookID     string
	Title      string
	OpenedAt   time.Time
	ClosedAt   *time.Time
	LastWindow int
	LastPage   int
}

// ReadingLogStore persists reading sessions for the library listing.
type ReadingLogStore struct {
	db *db.DB
}

// NewReadingLogStore creates a SQLite-backed reading log store.
func NewReadingLogStore(db *db.DB) *ReadingLogStore {
	return &ReadingLogStore{db: db}
}

// Open records the start of a reading session and returns the entry id.
func (s *ReadingLogStore) Open(ctx context.Context, bookID, title string) (string, error) {
	id := randid.Generate(12)

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO reading_log (id, book_id, title, opened_at)
		VALUES (?, ?, ?, ?)
	`, id, bookID, title, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to open reading log entry: %w", err)
	}

	return id, nil
}

// Close finishes a reading session, recording where the reader stopped.
// Returns ErrNotFound for an unknown entry id.
func (s *ReadingLogStore) Close(ctx context.Context, id string, lastWindow, lastPage int) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE reading_log SET closed_at = ?, last_window = ?, last_page = ?
		WHERE id = ?
	`, time.Now().UnixNano(), lastWindow, lastPage, id)
	if err != nil {
		return fmt.Errorf("failed to close reading log entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close reading log entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Recent returns the most recent reading sessions, newest first.
func (s *ReadingLogStore) Recent(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit < 1 {
		limit = 1
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, book_id, title, opened_at, closed_at, last_window, last_page
		FROM reading_log ORDER BY opened_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reading log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []LogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LastOpened returns when a book was last opened. Returns ErrNotFound for a
// book with no log entries.
func (s *ReadingLogStore) LastOpened(ctx context.Context, bookID string) (time.Time, error) {
	var openedAt sql.NullInt64
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT MAX(opened_at) FROM reading_log WHERE book_id = ?
	`, bookID).Scan(&openedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query reading log: %w", err)
	}
	if !openedAt.Valid {
		return time.Time{}, ErrNotFound
	}
	return time.Unix(0, openedAt.Int64), nil
}

func scanLogEntry(rows *sql.Rows) (LogEntry, error) {
	var (
		entry    LogEntry
		openedAt int64
		closedAt sql.NullInt64
	)
	err := rows.Scan(&entry.ID, &entry.BookID, &entry.Title, &openedAt, &closedAt, &entry.LastWindow, &entry.LastPage)
	if err != nil {
		return LogEntry{}, fmt.Errorf("failed to scan reading log entry: %w", err)
	}

	entry.OpenedAt = time.Unix(0, openedAt)
	if closedAt.Valid {
		t := time.Unix(0, closedAt.Int64)
		entry.ClosedAt = &t
	}
	return entry, nil
}
