package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lectern/internal/modules/library/domain"
	libraryout "lectern/internal/modules/library/port/out"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/reactive"
	"lectern/internal/platform/tx"
)

type SQLiteBookStore struct {
	db  *sql.DB
	hub *reactive.Hub
}

func NewSQLiteBookStore(ctx context.Context, db *sql.DB, hub *reactive.Hub) (libraryout.BookStore, error) {
	store := &SQLiteBookStore{db: db, hub: hub}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteBookStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS books (
  source_id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  curr_chars INTEGER NOT NULL,
  total_chars INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  dirty INTEGER NOT NULL DEFAULT 1,
  synced_at INTEGER
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (s *SQLiteBookStore) Save(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (source_id, title, curr_chars, total_chars, updated_at, dirty)
VALUES (?, ?, ?, ?, ?, 1)
ON CONFLICT(source_id) DO UPDATE SET
  title=excluded.title,
  curr_chars=excluded.curr_chars,
  total_chars=excluded.total_chars,
  updated_at=excluded.updated_at,
  dirty=1;
`
	_, err := tx.From(ctx, s.db).ExecContext(ctx, stmt,
		book.SourceID,
		book.Title,
		book.CurrChars,
		book.TotalChars,
		book.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	s.notify()
	return nil
}

func (s *SQLiteBookStore) FindByID(ctx context.Context, sourceID string) (domain.Book, error) {
	row := tx.From(ctx, s.db).QueryRowContext(ctx,
		`SELECT source_id, title, curr_chars, total_chars, updated_at FROM books WHERE source_id = ?`, sourceID)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, fmt.Errorf("book %s: %w", sourceID, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("find book: %w", err)
	}
	return book, nil
}

func (s *SQLiteBookStore) List(ctx context.Context) ([]domain.Book, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx,
		`SELECT source_id, title, curr_chars, total_chars, updated_at FROM books ORDER BY updated_at DESC, source_id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()
	out := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return out, nil
}

func (s *SQLiteBookStore) notify() {
	if s.hub != nil {
		s.hub.Notify()
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (domain.Book, error) {
	var book domain.Book
	var updated int64
	if err := row.Scan(&book.SourceID, &book.Title, &book.CurrChars, &book.TotalChars, &updated); err != nil {
		return domain.Book{}, err
	}
	book.UpdatedAt = time.Unix(updated, 0).UTC()
	return book, nil
}
