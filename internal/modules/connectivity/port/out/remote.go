package out

import "context"

// Remote answers the two questions connectivity needs: is the hub up, and
// who does the configured token belong to.
type Remote interface {
	HasToken() bool
	Health(ctx context.Context) error
	Me(ctx context.Context) (string, error)
}
