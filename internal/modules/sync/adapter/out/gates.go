package out

import (
	"context"
	"errors"
	"fmt"

	connin "lectern/internal/modules/connectivity/port/in"
	sessionin "lectern/internal/modules/session/port/in"
	syncout "lectern/internal/modules/sync/port/out"
	apperrors "lectern/internal/platform/errors"
)

// ConnectivityGate refuses a run up front when the last known connectivity
// state rules out talking to the hub.
type ConnectivityGate struct {
	connectivity connin.Usecase
}

func NewConnectivityGate(connectivity connin.Usecase) syncout.Gate {
	return ConnectivityGate{connectivity: connectivity}
}

func (g ConnectivityGate) Check() error {
	status := g.connectivity.Status()
	switch {
	case status.State == "unauthenticated":
		return fmt.Errorf("sync unavailable: %w", apperrors.ErrUnauthorized)
	case status.State == "offline" || !status.Online:
		return fmt.Errorf("sync unavailable: %w", apperrors.ErrOffline)
	}
	return nil
}

// LifecycleProbe reports the lifecycle's active session.
type LifecycleProbe struct {
	sessions sessionin.Usecase
}

func NewLifecycleProbe(sessions sessionin.Usecase) syncout.ActiveSession {
	return LifecycleProbe{sessions: sessions}
}

func (p LifecycleProbe) ActiveID(ctx context.Context) (string, error) {
	current, err := p.sessions.Current(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNoActiveSession):
		return "", nil
	case err != nil:
		return "", err
	}
	return current.ID, nil
}
