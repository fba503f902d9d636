package in

import (
	"context"

	"lectern/internal/modules/connectivity/dto"
)

type Usecase interface {
	Status() dto.StatusOutput
	Probe(ctx context.Context) (dto.StatusOutput, error)
	Subscribe(fn func(dto.StatusOutput)) (cancel func())
}
