package in

import (
	"context"

	"lectern/internal/modules/library/dto"
)

type Usecase interface {
	AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error)
	UpdatePosition(ctx context.Context, input dto.UpdatePositionInput) (dto.BookOutput, error)
	ListBooks(ctx context.Context) ([]dto.BookOutput, error)
	GetBook(ctx context.Context, sourceID string) (dto.BookOutput, error)
}
