package remote

import (
	"fmt"
	"net/http"
)

// Error is a non-2xx answer from the hub.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hub error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("hub error: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
