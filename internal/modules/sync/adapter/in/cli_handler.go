package in

import (
	"context"

	"lectern/internal/modules/sync/dto"
	syncin "lectern/internal/modules/sync/port/in"
)

type CLIHandler struct {
	usecase syncin.Usecase
}

func NewCLIHandler(usecase syncin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) SyncNow(ctx context.Context) (dto.ResultOutput, error) {
	return h.usecase.Sync(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Activity(ctx context.Context, limit int) ([]dto.ActivityOutput, error) {
	return h.usecase.Activity(ctx, limit)
}
