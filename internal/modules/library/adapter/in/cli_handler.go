package in

import (
	"context"

	"lectern/internal/modules/library/dto"
	libraryin "lectern/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddBook(ctx context.Context, sourceID, title string, currChars, totalChars int64) (dto.BookOutput, error) {
	return h.usecase.AddBook(ctx, dto.AddBookInput{SourceID: sourceID, Title: title, CurrChars: currChars, TotalChars: totalChars})
}

func (h CLIHandler) UpdatePosition(ctx context.Context, sourceID string, currChars int64) (dto.BookOutput, error) {
	return h.usecase.UpdatePosition(ctx, dto.UpdatePositionInput{SourceID: sourceID, CurrChars: currChars})
}

func (h CLIHandler) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	return h.usecase.ListBooks(ctx)
}

func (h CLIHandler) GetBook(ctx context.Context, sourceID string) (dto.BookOutput, error) {
	return h.usecase.GetBook(ctx, sourceID)
}
