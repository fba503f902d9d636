package out

import (
	"context"

	connout "lectern/internal/modules/connectivity/port/out"
	"lectern/internal/platform/remote"
	"lectern/internal/platform/wire"
)

type HubRemote struct {
	client *remote.Client
}

func NewHubRemote(client *remote.Client) connout.Remote {
	return &HubRemote{client: client}
}

func (r *HubRemote) HasToken() bool {
	return r.client.HasToken()
}

func (r *HubRemote) Health(ctx context.Context) error {
	return r.client.Get(ctx, "/healthz", nil)
}

func (r *HubRemote) Me(ctx context.Context) (string, error) {
	var me wire.Me
	if err := r.client.Get(ctx, "/api/v1/me", &me); err != nil {
		return "", err
	}
	return me.User, nil
}
