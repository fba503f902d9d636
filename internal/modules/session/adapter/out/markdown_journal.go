package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/platform/markdown"
	"lectern/internal/platform/slug"
)

// MarkdownJournal writes one note per finished session under
// <dir>/YYYY/MM/DD/HHMMSS-<title>.md.
type MarkdownJournal struct {
	dir string
}

func NewMarkdownJournal(dir string) sessionout.Journal {
	return &MarkdownJournal{dir: dir}
}

func (j *MarkdownJournal) Write(_ context.Context, session domain.ReadingSession, title string) (string, error) {
	date := session.StartTime
	dir := filepath.Join(j.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(title)))

	meta := map[string]any{
		"schema_version":     domain.SchemaVersion,
		"id":                 session.ID,
		"source_id":          session.SourceID,
		"start_time":         session.StartTime.Format(time.RFC3339),
		"last_active_time":   session.LastActiveTime.Format(time.RFC3339),
		"total_reading_time": session.TotalReadingTime,
		"initial_chars":      session.InitialChars,
		"curr_chars":         session.CurrChars,
	}
	if session.EndTime != nil {
		meta["end_time"] = session.EndTime.Format(time.RFC3339)
	}
	body := fmt.Sprintf("# Reading session %s\n\n- Book: [[%s]]\n- Time read: %s\n- Characters: %d -> %d (+%d)\n",
		session.ID,
		title,
		(time.Duration(session.TotalReadingTime) * time.Second).String(),
		session.InitialChars,
		session.CurrChars,
		session.CharsRead(),
	)
	rendered, err := markdown.Note{Meta: meta, Body: body}.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}
