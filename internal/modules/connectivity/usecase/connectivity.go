package usecase

import (
	"context"

	"lectern/internal/modules/connectivity/domain"
	"lectern/internal/modules/connectivity/dto"
	connin "lectern/internal/modules/connectivity/port/in"
	"lectern/internal/modules/connectivity/service"
)

type Interactor struct {
	monitor *service.Monitor
}

func NewInteractor(monitor *service.Monitor) connin.Usecase {
	return &Interactor{monitor: monitor}
}

func (i *Interactor) Status() dto.StatusOutput {
	return mapStatus(i.monitor.Status())
}

func (i *Interactor) Probe(ctx context.Context) (dto.StatusOutput, error) {
	status, err := i.monitor.Probe(ctx)
	return mapStatus(status), err
}

func (i *Interactor) Subscribe(fn func(dto.StatusOutput)) (cancel func()) {
	return i.monitor.Subscribe(func(status domain.Status) { fn(mapStatus(status)) })
}

func mapStatus(status domain.Status) dto.StatusOutput {
	return dto.StatusOutput{
		State:     string(status.State),
		Online:    status.Online,
		User:      status.User,
		Detail:    status.Detail,
		CheckedAt: status.CheckedAt,
	}
}
