package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/skirmish/client/ui"
)

// ErrManagerStopped is returned when the manager is used after Stop.
var ErrManagerStopped = errors.New("network manager stopped")

// RequestError is returned when the simulation answers with a non-2xx status.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed: status: %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == status
	}
	return false
}

// describe attaches a player-facing message to a failed poll.
func describe(err error) error {
	var reqErr *RequestError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ui.ActionableError{Message: "Simulation timed out", Err: err}
	case errors.As(err, &reqErr):
		return &ui.ActionableError{Message: fmt.Sprintf("Simulation answered %d", reqErr.StatusCode), Err: err}
	default:
		return &ui.ActionableError{Message: "Simulation unreachable", Err: err}
	}
}
