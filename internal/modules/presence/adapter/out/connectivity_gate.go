package out

import (
	connin "lectern/internal/modules/connectivity/port/in"
	presenceout "lectern/internal/modules/presence/port/out"
)

type ConnectivityGate struct {
	connectivity connin.Usecase
}

func NewConnectivityGate(connectivity connin.Usecase) presenceout.Gate {
	return ConnectivityGate{connectivity: connectivity}
}

func (g ConnectivityGate) CanAnnounce() bool {
	status := g.connectivity.Status()
	return status.State == "authenticated" && status.Online
}
