package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "fallback"},
		{name: "plain", err: cause, want: "fallback"},
		{name: "actionable", err: &ActionableError{Message: "Server down", Err: cause}, want: "Server down"},
		{name: "wrapped", err: fmt.Errorf("poll: %w", &ActionableError{Message: "Server down"}), want: "Server down"},
		{name: "empty message", err: &ActionableError{Err: cause}, want: "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err, "fallback"))
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ActionableError{Message: "Server down", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server down: boom", err.Error())
	assert.Equal(t, "Server down", (&ActionableError{Message: "Server down"}).Error())
}
