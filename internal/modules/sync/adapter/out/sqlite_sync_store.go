package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lectern/internal/modules/sync/domain"
	syncout "lectern/internal/modules/sync/port/out"
	"lectern/internal/platform/reactive"
	"lectern/internal/platform/tx"
)

// SQLiteSyncStore reads and writes the session and book tables owned by the
// session and library stores, which must be initialized first. Besides whole
// records pulled from the hub it only touches the dirty and synced_at
// bookkeeping columns.
type SQLiteSyncStore struct {
	db  *sql.DB
	tx  tx.Manager
	hub *reactive.Hub
}

func NewSQLiteSyncStore(db *sql.DB, txm tx.Manager, hub *reactive.Hub) syncout.LocalStore {
	return &SQLiteSyncStore{db: db, tx: txm, hub: hub}
}

func (s *SQLiteSyncStore) Sessions(ctx context.Context) ([]domain.LocalSession, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `
SELECT id, source_id, initial_chars, curr_chars, total_reading_time,
       start_time, last_active_time, is_paused, end_time, dirty
FROM reading_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list local sessions: %w", err)
	}
	defer rows.Close()
	out := []domain.LocalSession{}
	for rows.Next() {
		var (
			local      domain.LocalSession
			start      int64
			lastActive int64
			paused     int64
			end        sql.NullInt64
			dirty      int64
		)
		r := &local.Record
		if err := rows.Scan(&r.ID, &r.SourceID, &r.InitialChars, &r.CurrChars, &r.TotalReadingTime,
			&start, &lastActive, &paused, &end, &dirty); err != nil {
			return nil, fmt.Errorf("scan local session: %w", err)
		}
		r.StartTime = time.Unix(start, 0).UTC()
		r.LastActiveTime = time.Unix(lastActive, 0).UTC()
		r.IsPaused = paused != 0
		if end.Valid {
			t := time.Unix(end.Int64, 0).UTC()
			r.EndTime = &t
		}
		local.Dirty = dirty != 0
		out = append(out, local)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate local sessions: %w", err)
	}
	return out, nil
}

func (s *SQLiteSyncStore) Progress(ctx context.Context) ([]domain.LocalProgress, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx,
		`SELECT source_id, title, curr_chars, total_chars, updated_at, dirty FROM books ORDER BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("list local progress: %w", err)
	}
	defer rows.Close()
	out := []domain.LocalProgress{}
	for rows.Next() {
		var (
			local   domain.LocalProgress
			updated int64
			dirty   int64
		)
		r := &local.Record
		if err := rows.Scan(&r.SourceID, &r.Title, &r.CurrChars, &r.TotalChars, &updated, &dirty); err != nil {
			return nil, fmt.Errorf("scan local progress: %w", err)
		}
		r.UpdatedAt = time.Unix(updated, 0).UTC()
		local.Dirty = dirty != 0
		out = append(out, local)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate local progress: %w", err)
	}
	return out, nil
}

func (s *SQLiteSyncStore) Pending(ctx context.Context) (int, error) {
	var pending int
	err := tx.From(ctx, s.db).QueryRowContext(ctx, `
SELECT (SELECT COUNT(*) FROM reading_sessions WHERE dirty = 1)
     + (SELECT COUNT(*) FROM books WHERE dirty = 1)`).Scan(&pending)
	if err != nil {
		return 0, fmt.Errorf("count pending records: %w", err)
	}
	return pending, nil
}

func (s *SQLiteSyncStore) Apply(ctx context.Context, changes domain.Changes) (domain.Applied, error) {
	applied := domain.Applied{}
	synced := changes.SyncedAt.Unix()
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		exec := tx.From(ctx, s.db)
		for _, pull := range changes.SessionPulls {
			ok, err := applySessionPull(ctx, exec, pull, synced)
			if err != nil {
				return err
			}
			if ok {
				applied.Sessions++
			} else {
				applied.Stale++
			}
		}
		for _, record := range changes.SessionClean {
			res, err := exec.ExecContext(ctx,
				`UPDATE reading_sessions SET dirty = 0, synced_at = ? WHERE id = ? AND `+sessionVersion,
				append([]any{synced, record.ID}, sessionVersionArgs(record)...)...)
			if err != nil {
				return fmt.Errorf("clear session %s: %w", record.ID, err)
			}
			if affected(res) {
				applied.Cleaned++
			} else {
				applied.Stale++
			}
		}
		for _, pull := range changes.ProgressPulls {
			ok, err := applyProgressPull(ctx, exec, pull, synced)
			if err != nil {
				return err
			}
			if ok {
				applied.Progress++
			} else {
				applied.Stale++
			}
		}
		for _, record := range changes.ProgressClean {
			res, err := exec.ExecContext(ctx,
				`UPDATE books SET dirty = 0, synced_at = ? WHERE source_id = ? AND `+progressVersion,
				append([]any{synced, record.SourceID}, progressVersionArgs(record)...)...)
			if err != nil {
				return fmt.Errorf("clear progress %s: %w", record.SourceID, err)
			}
			if affected(res) {
				applied.Cleaned++
			} else {
				applied.Stale++
			}
		}
		return nil
	})
	if err != nil {
		return domain.Applied{}, err
	}
	if applied.Sessions+applied.Progress+applied.Cleaned > 0 && s.hub != nil {
		s.hub.Notify()
	}
	return applied, nil
}

const sessionVersion = `curr_chars = ? AND total_reading_time = ? AND last_active_time = ? AND is_paused = ? AND end_time IS ?`

func sessionVersionArgs(r domain.SessionRecord) []any {
	return []any{r.CurrChars, r.TotalReadingTime, r.LastActiveTime.Unix(), boolToInt(r.IsPaused), unixOrNil(r.EndTime)}
}

const progressVersion = `title = ? AND curr_chars = ? AND total_chars = ? AND updated_at = ?`

func progressVersionArgs(r domain.ProgressRecord) []any {
	return []any{r.Title, r.CurrChars, r.TotalChars, r.UpdatedAt.Unix()}
}

func applySessionPull(ctx context.Context, exec tx.Executor, pull domain.SessionPull, synced int64) (bool, error) {
	r := pull.Record
	if pull.Expected == nil {
		res, err := exec.ExecContext(ctx, `
INSERT INTO reading_sessions (
  id, source_id, initial_chars, curr_chars, total_reading_time,
  start_time, last_active_time, is_paused, end_time, local_origin, dirty, synced_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?)
ON CONFLICT(id) DO NOTHING`,
			r.ID, r.SourceID, r.InitialChars, r.CurrChars, r.TotalReadingTime,
			r.StartTime.Unix(), r.LastActiveTime.Unix(), boolToInt(r.IsPaused), unixOrNil(r.EndTime), synced)
		if err != nil {
			return false, fmt.Errorf("insert pulled session %s: %w", r.ID, err)
		}
		return affected(res), nil
	}
	args := []any{
		r.SourceID, r.InitialChars, r.CurrChars, r.TotalReadingTime,
		r.StartTime.Unix(), r.LastActiveTime.Unix(), boolToInt(r.IsPaused), unixOrNil(r.EndTime), synced,
		r.ID,
	}
	res, err := exec.ExecContext(ctx, `
UPDATE reading_sessions SET
  source_id = ?, initial_chars = ?, curr_chars = ?, total_reading_time = ?,
  start_time = ?, last_active_time = ?, is_paused = ?, end_time = ?,
  dirty = 0, synced_at = ?
WHERE id = ? AND `+sessionVersion,
		append(args, sessionVersionArgs(*pull.Expected)...)...)
	if err != nil {
		return false, fmt.Errorf("update pulled session %s: %w", r.ID, err)
	}
	return affected(res), nil
}

func applyProgressPull(ctx context.Context, exec tx.Executor, pull domain.ProgressPull, synced int64) (bool, error) {
	r := pull.Record
	if pull.Expected == nil {
		res, err := exec.ExecContext(ctx, `
INSERT INTO books (source_id, title, curr_chars, total_chars, updated_at, dirty, synced_at)
VALUES (?, ?, ?, ?, ?, 0, ?)
ON CONFLICT(source_id) DO NOTHING`,
			r.SourceID, r.Title, r.CurrChars, r.TotalChars, r.UpdatedAt.Unix(), synced)
		if err != nil {
			return false, fmt.Errorf("insert pulled progress %s: %w", r.SourceID, err)
		}
		return affected(res), nil
	}
	args := []any{r.Title, r.CurrChars, r.TotalChars, r.UpdatedAt.Unix(), synced, r.SourceID}
	res, err := exec.ExecContext(ctx, `
UPDATE books SET title = ?, curr_chars = ?, total_chars = ?, updated_at = ?, dirty = 0, synced_at = ?
WHERE source_id = ? AND `+progressVersion,
		append(args, progressVersionArgs(*pull.Expected)...)...)
	if err != nil {
		return false, fmt.Errorf("update pulled progress %s: %w", r.SourceID, err)
	}
	return affected(res), nil
}

func affected(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n > 0
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
