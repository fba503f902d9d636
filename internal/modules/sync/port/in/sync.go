package in

import (
	"context"

	"lectern/internal/modules/sync/dto"
)

type Usecase interface {
	Sync(ctx context.Context) (dto.ResultOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Subscribe(fn func(dto.StatusOutput)) (cancel func())
	Activity(ctx context.Context, limit int) ([]dto.ActivityOutput, error)
}
