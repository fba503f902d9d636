package out

import (
	"context"

	"lectern/internal/modules/library/domain"
)

// BookStore persists the position ledger. Save marks the row as changed
// locally so the next reconciliation pushes it.
type BookStore interface {
	Save(ctx context.Context, book domain.Book) error
	FindByID(ctx context.Context, sourceID string) (domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
}
