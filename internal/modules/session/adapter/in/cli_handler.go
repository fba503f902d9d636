package in

import (
	"context"

	"lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, sourceID string) (dto.TransitionOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{SourceID: sourceID})
}

func (h CLIHandler) Pause(ctx context.Context) (dto.TransitionOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (dto.TransitionOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Progress(ctx context.Context, currChars int64) (dto.TransitionOutput, error) {
	return h.usecase.UpdateProgress(ctx, dto.ProgressInput{CurrChars: currChars})
}

func (h CLIHandler) Finish(ctx context.Context) (dto.FinishOutput, error) {
	return h.usecase.Finish(ctx)
}

func (h CLIHandler) Current(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.SessionOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) List(ctx context.Context, sourceID string, openOnly bool, limit int) ([]dto.SessionOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{SourceID: sourceID, OpenOnly: openOnly, Limit: limit})
}

func (h CLIHandler) Restore(ctx context.Context) (dto.RestoreOutput, error) {
	return h.usecase.Restore(ctx)
}
