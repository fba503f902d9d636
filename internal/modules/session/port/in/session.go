package in

import (
	"context"

	"lectern/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.TransitionOutput, error)
	Pause(ctx context.Context) (dto.TransitionOutput, error)
	Resume(ctx context.Context) (dto.TransitionOutput, error)
	UpdateProgress(ctx context.Context, input dto.ProgressInput) (dto.TransitionOutput, error)
	Finish(ctx context.Context) (dto.FinishOutput, error)
	Current(ctx context.Context) (dto.SessionOutput, error)
	Subscribe(fn func(*dto.SessionOutput)) (cancel func())
	Get(ctx context.Context, id string) (dto.SessionOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error)
	Restore(ctx context.Context) (dto.RestoreOutput, error)
}
