package in

import (
	"context"

	"lectern/internal/modules/connectivity/dto"
	connin "lectern/internal/modules/connectivity/port/in"
)

type CLIHandler struct {
	usecase connin.Usecase
}

func NewCLIHandler(usecase connin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status() dto.StatusOutput {
	return h.usecase.Status()
}

func (h CLIHandler) Probe(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Probe(ctx)
}
