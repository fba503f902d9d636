package usecase

import (
	"context"

	presencein "lectern/internal/modules/presence/port/in"
	"lectern/internal/modules/presence/service"
)

type Interactor struct {
	announcer *service.Announcer
}

func NewInteractor(announcer *service.Announcer) presencein.Usecase {
	return &Interactor{announcer: announcer}
}

func (i *Interactor) SetPresence(activityType, activityName string) {
	i.announcer.SetPresence(activityType, activityName)
}

func (i *Interactor) Drain(ctx context.Context) error {
	return i.announcer.Drain(ctx)
}
