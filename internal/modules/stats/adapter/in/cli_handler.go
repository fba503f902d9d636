package in

import (
	"context"

	"lectern/internal/modules/stats/dto"
	statsin "lectern/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Watch(ctx context.Context, fn func(dto.SnapshotOutput, error)) (cancel func()) {
	return h.usecase.Watch(ctx, fn)
}
