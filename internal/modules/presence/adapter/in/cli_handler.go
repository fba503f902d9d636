package in

import (
	"context"

	presencein "lectern/internal/modules/presence/port/in"
)

type CLIHandler struct {
	usecase presencein.Usecase
}

func NewCLIHandler(usecase presencein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Set(activityType, activityName string) {
	h.usecase.SetPresence(activityType, activityName)
}

// Drain blocks until announcements sent by this process have finished or
// ctx ends. One-shot commands call it before exiting.
func (h CLIHandler) Drain(ctx context.Context) error {
	return h.usecase.Drain(ctx)
}
