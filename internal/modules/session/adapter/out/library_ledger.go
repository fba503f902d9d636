package out

import (
	"context"
	"errors"

	librarydto "lectern/internal/modules/library/dto"
	libraryin "lectern/internal/modules/library/port/in"
	sessionout "lectern/internal/modules/session/port/out"
	apperrors "lectern/internal/platform/errors"
)

// LibraryLedger exposes the library's book positions to the lifecycle.
type LibraryLedger struct {
	library libraryin.Usecase
}

func NewLibraryLedger(library libraryin.Usecase) sessionout.BookLedger {
	return &LibraryLedger{library: library}
}

func (l *LibraryLedger) Lookup(ctx context.Context, sourceID string) (sessionout.BookRef, bool, error) {
	book, err := l.library.GetBook(ctx, sourceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return sessionout.BookRef{SourceID: sourceID}, false, nil
	}
	if err != nil {
		return sessionout.BookRef{}, false, err
	}
	return sessionout.BookRef{SourceID: book.SourceID, Title: book.Title, CurrChars: book.CurrChars}, true, nil
}

// Advance records the position a session ended at, registering the book
// when the session was started for one the library did not know yet.
func (l *LibraryLedger) Advance(ctx context.Context, sourceID string, currChars int64) error {
	_, err := l.library.UpdatePosition(ctx, librarydto.UpdatePositionInput{SourceID: sourceID, CurrChars: currChars})
	if errors.Is(err, apperrors.ErrNotFound) {
		_, err = l.library.AddBook(ctx, librarydto.AddBookInput{SourceID: sourceID, CurrChars: currChars})
	}
	return err
}
