package in

import (
	"context"

	"lectern/internal/modules/stats/dto"
)

type Usecase interface {
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	// Watch delivers a snapshot now and again after every local change until
	// cancel is called or ctx ends.
	Watch(ctx context.Context, fn func(dto.SnapshotOutput, error)) (cancel func())
}
