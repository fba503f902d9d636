package usecase

import (
	"context"

	"lectern/internal/modules/library/domain"
	"lectern/internal/modules/library/dto"
	libraryin "lectern/internal/modules/library/port/in"
	"lectern/internal/modules/library/service"
)

type Interactor struct {
	svc *service.BookService
}

func NewInteractor(svc *service.BookService) libraryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error) {
	book, err := i.svc.AddBook(ctx, input.SourceID, input.Title, input.CurrChars, input.TotalChars)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return mapBook(book), nil
}

func (i *Interactor) UpdatePosition(ctx context.Context, input dto.UpdatePositionInput) (dto.BookOutput, error) {
	book, err := i.svc.UpdatePosition(ctx, input.SourceID, input.CurrChars)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return mapBook(book), nil
}

func (i *Interactor) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	books, err := i.svc.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, mapBook(book))
	}
	return out, nil
}

func (i *Interactor) GetBook(ctx context.Context, sourceID string) (dto.BookOutput, error) {
	book, err := i.svc.GetBook(ctx, sourceID)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return mapBook(book), nil
}

func mapBook(book domain.Book) dto.BookOutput {
	return dto.BookOutput{
		SourceID:   book.SourceID,
		Title:      book.Title,
		CurrChars:  book.CurrChars,
		TotalChars: book.TotalChars,
		Percent:    book.Percent(),
		UpdatedAt:  book.UpdatedAt,
	}
}
