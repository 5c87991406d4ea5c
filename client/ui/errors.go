// Package ui holds helpers shared by on-screen widgets.
package ui

import "errors"

// ActionableError carries a message fit for display next to the error
// that caused it.
type ActionableError struct {
	Message string
	Err     error
}

func (e *ActionableError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ActionableError) Unwrap() error {
	return e.Err
}

// Message returns the display message of the first ActionableError in
// err's chain, or fallback.
func Message(err error, fallback string) string {
	var actionable *ActionableError
	if errors.As(err, &actionable) && actionable.Message != "" {
		return actionable.Message
	}
	return fallback
}
