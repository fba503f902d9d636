package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lectern/internal/modules/library/domain"
	libraryout "lectern/internal/modules/library/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
)

type BookService struct {
	clock clock.Clock
	store libraryout.BookStore
}

func NewBookService(clock clock.Clock, store libraryout.BookStore) *BookService {
	return &BookService{clock: clock, store: store}
}

// AddBook registers a book or refreshes its metadata. An existing position is
// kept unless the caller supplies one.
func (s *BookService) AddBook(ctx context.Context, sourceID, title string, currChars, totalChars int64) (domain.Book, error) {
	sourceID = strings.TrimSpace(sourceID)
	book, err := s.store.FindByID(ctx, sourceID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		book = domain.Book{SourceID: sourceID}
	case err != nil:
		return domain.Book{}, err
	}
	if title = strings.TrimSpace(title); title != "" {
		book.Title = title
	}
	if book.Title == "" {
		book.Title = sourceID
	}
	if currChars > 0 {
		book.CurrChars = currChars
	}
	if totalChars > 0 {
		book.TotalChars = totalChars
	}
	book.UpdatedAt = clock.Seconds(s.clock)
	if err := book.Validate(); err != nil {
		return domain.Book{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.Save(ctx, book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (s *BookService) UpdatePosition(ctx context.Context, sourceID string, currChars int64) (domain.Book, error) {
	book, err := s.store.FindByID(ctx, sourceID)
	if err != nil {
		return domain.Book{}, err
	}
	if currChars < 0 {
		return domain.Book{}, fmt.Errorf("%w: character offset must be non-negative", apperrors.ErrInvalidInput)
	}
	book.CurrChars = currChars
	book.UpdatedAt = clock.Seconds(s.clock)
	if err := s.store.Save(ctx, book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.store.List(ctx)
}

func (s *BookService) GetBook(ctx context.Context, sourceID string) (domain.Book, error) {
	return s.store.FindByID(ctx, sourceID)
}
