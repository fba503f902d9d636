package out

import (
	"context"

	"lectern/internal/modules/session/domain"
)

type ListFilter struct {
	SourceID string
	OpenOnly bool
	// LocalOnly excludes records pulled from other clients.
	LocalOnly bool
	Limit     int
}

// SessionStore persists reading sessions. Create and Update are upserts keyed
// by ID. List orders by last activity, most recent first.
//
// Open, Replace and DeleteIf are the conditional writes the lifecycle uses:
// several runtimes may share one database, so each reports false instead of
// overwriting a record another runtime changed first.
type SessionStore interface {
	Create(ctx context.Context, session domain.ReadingSession) error
	Update(ctx context.Context, session domain.ReadingSession) error
	Delete(ctx context.Context, id string) error
	// Open inserts session unless a session created on this client is open.
	Open(ctx context.Context, session domain.ReadingSession) (bool, error)
	// Replace writes next only while the stored record still equals expected.
	Replace(ctx context.Context, expected, next domain.ReadingSession) (bool, error)
	// DeleteIf deletes the record only while it still equals expected.
	DeleteIf(ctx context.Context, expected domain.ReadingSession) (bool, error)
	Get(ctx context.Context, id string) (domain.ReadingSession, error)
	List(ctx context.Context, filter ListFilter) ([]domain.ReadingSession, error)
	Watch(fn func()) (cancel func())
}

type BookRef struct {
	SourceID  string
	Title     string
	CurrChars int64
}

// BookLedger is the per-book progress a session starts from and advances.
type BookLedger interface {
	Lookup(ctx context.Context, sourceID string) (BookRef, bool, error)
	Advance(ctx context.Context, sourceID string, currChars int64) error
}

type Journal interface {
	Write(ctx context.Context, session domain.ReadingSession, title string) (string, error)
}
