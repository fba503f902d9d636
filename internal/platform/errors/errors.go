package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrSyncInProgress  = errors.New("sync already in progress")
	ErrOffline         = errors.New("remote service is unreachable")
	ErrUnauthorized    = errors.New("not signed in to the remote service")
)
