package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/reactive"
	"lectern/internal/platform/tx"
)

type SQLiteSessionStore struct {
	db  *sql.DB
	hub *reactive.Hub
}

func NewSQLiteSessionStore(ctx context.Context, db *sql.DB, hub *reactive.Hub) (sessionout.SessionStore, error) {
	store := &SQLiteSessionStore{db: db, hub: hub}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) ensureSchema(ctx context.Context) error {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS reading_sessions (
  id TEXT PRIMARY KEY,
  source_id TEXT NOT NULL,
  initial_chars INTEGER NOT NULL,
  curr_chars INTEGER NOT NULL,
  total_reading_time INTEGER NOT NULL,
  start_time INTEGER NOT NULL,
  last_active_time INTEGER NOT NULL,
  is_paused INTEGER NOT NULL,
  end_time INTEGER,
  local_origin INTEGER NOT NULL DEFAULT 1,
  dirty INTEGER NOT NULL DEFAULT 1,
  synced_at INTEGER
)`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_source ON reading_sessions(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_activity ON reading_sessions(last_active_time)`,
	} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create reading_sessions schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteSessionStore) Create(ctx context.Context, session domain.ReadingSession) error {
	if err := s.upsert(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Update(ctx context.Context, session domain.ReadingSession) error {
	if err := s.upsert(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// upsert writes lifecycle columns only. local_origin and synced_at belong to
// the record's history and survive updates.
func (s *SQLiteSessionStore) upsert(ctx context.Context, session domain.ReadingSession) error {
	const stmt = `
INSERT INTO reading_sessions (
  id, source_id, initial_chars, curr_chars, total_reading_time,
  start_time, last_active_time, is_paused, end_time, local_origin, dirty
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 1)
ON CONFLICT(id) DO UPDATE SET
  source_id=excluded.source_id,
  initial_chars=excluded.initial_chars,
  curr_chars=excluded.curr_chars,
  total_reading_time=excluded.total_reading_time,
  start_time=excluded.start_time,
  last_active_time=excluded.last_active_time,
  is_paused=excluded.is_paused,
  end_time=excluded.end_time,
  dirty=1;
`
	_, err := tx.From(ctx, s.db).ExecContext(ctx, stmt,
		session.ID,
		session.SourceID,
		session.InitialChars,
		session.CurrChars,
		session.TotalReadingTime,
		session.StartTime.Unix(),
		session.LastActiveTime.Unix(),
		boolToInt(session.IsPaused),
		unixOrNil(session.EndTime),
	)
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	if _, err := tx.From(ctx, s.db).ExecContext(ctx, `DELETE FROM reading_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.notify()
	return nil
}

func (s *SQLiteSessionStore) Open(ctx context.Context, session domain.ReadingSession) (bool, error) {
	const stmt = `
INSERT INTO reading_sessions (
  id, source_id, initial_chars, curr_chars, total_reading_time,
  start_time, last_active_time, is_paused, end_time, local_origin, dirty
)
SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 1
WHERE NOT EXISTS (SELECT 1 FROM reading_sessions WHERE end_time IS NULL AND local_origin = 1)
`
	res, err := tx.From(ctx, s.db).ExecContext(ctx, stmt,
		session.ID,
		session.SourceID,
		session.InitialChars,
		session.CurrChars,
		session.TotalReadingTime,
		session.StartTime.Unix(),
		session.LastActiveTime.Unix(),
		boolToInt(session.IsPaused),
		unixOrNil(session.EndTime),
	)
	if err != nil {
		return false, fmt.Errorf("open session: %w", err)
	}
	return s.changed(res)
}

// versionClause matches a row whose lifecycle columns equal the expected
// copy. IS compares NULL end times as equal.
const versionClause = `curr_chars = ? AND total_reading_time = ? AND last_active_time = ? AND is_paused = ? AND end_time IS ?`

func versionArgs(v domain.ReadingSession) []any {
	return []any{v.CurrChars, v.TotalReadingTime, v.LastActiveTime.Unix(), boolToInt(v.IsPaused), unixOrNil(v.EndTime)}
}

func (s *SQLiteSessionStore) Replace(ctx context.Context, expected, next domain.ReadingSession) (bool, error) {
	args := []any{
		next.CurrChars,
		next.TotalReadingTime,
		next.LastActiveTime.Unix(),
		boolToInt(next.IsPaused),
		unixOrNil(next.EndTime),
		expected.ID,
	}
	res, err := tx.From(ctx, s.db).ExecContext(ctx, `
UPDATE reading_sessions SET
  curr_chars = ?, total_reading_time = ?, last_active_time = ?, is_paused = ?, end_time = ?, dirty = 1
WHERE id = ? AND `+versionClause, append(args, versionArgs(expected)...)...)
	if err != nil {
		return false, fmt.Errorf("replace session: %w", err)
	}
	return s.changed(res)
}

func (s *SQLiteSessionStore) DeleteIf(ctx context.Context, expected domain.ReadingSession) (bool, error) {
	res, err := tx.From(ctx, s.db).ExecContext(ctx,
		`DELETE FROM reading_sessions WHERE id = ? AND `+versionClause,
		append([]any{expected.ID}, versionArgs(expected)...)...)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return s.changed(res)
}

func (s *SQLiteSessionStore) changed(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	s.notify()
	return true, nil
}

const sessionColumns = `id, source_id, initial_chars, curr_chars, total_reading_time, start_time, last_active_time, is_paused, end_time`

func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (domain.ReadingSession, error) {
	row := tx.From(ctx, s.db).QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM reading_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReadingSession{}, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.ReadingSession{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *SQLiteSessionStore) List(ctx context.Context, filter sessionout.ListFilter) ([]domain.ReadingSession, error) {
	where := []string{}
	args := []any{}
	if filter.SourceID != "" {
		where = append(where, "source_id = ?")
		args = append(args, filter.SourceID)
	}
	if filter.OpenOnly {
		where = append(where, "end_time IS NULL")
	}
	if filter.LocalOnly {
		where = append(where, "local_origin = 1")
	}
	query := `SELECT ` + sessionColumns + ` FROM reading_sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY last_active_time DESC, start_time DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := tx.From(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	out := []domain.ReadingSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (s *SQLiteSessionStore) Watch(fn func()) (cancel func()) {
	if s.hub == nil {
		return func() {}
	}
	return s.hub.Subscribe(fn)
}

func (s *SQLiteSessionStore) notify() {
	if s.hub != nil {
		s.hub.Notify()
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (domain.ReadingSession, error) {
	var (
		session    domain.ReadingSession
		start      int64
		lastActive int64
		paused     int64
		end        sql.NullInt64
	)
	err := row.Scan(
		&session.ID,
		&session.SourceID,
		&session.InitialChars,
		&session.CurrChars,
		&session.TotalReadingTime,
		&start,
		&lastActive,
		&paused,
		&end,
	)
	if err != nil {
		return domain.ReadingSession{}, err
	}
	session.StartTime = time.Unix(start, 0).UTC()
	session.LastActiveTime = time.Unix(lastActive, 0).UTC()
	session.IsPaused = paused != 0
	if end.Valid {
		t := time.Unix(end.Int64, 0).UTC()
		session.EndTime = &t
	}
	return session, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
