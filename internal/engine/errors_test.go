package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError_Error(t *testing.T) {
	tests := []struct {
		err  *RuntimeError
		want string
	}{
		{
			err:  NewStructureError("rx", "expected exactly one upstream module, found 2"),
			want: "STRUCTURE_VIOLATION: expected exactly one upstream module, found 2 (module=rx)",
		},
		{
			err:  NewPressLimitError(50, nil),
			want: "PRESS_LIMIT: gave up after 50 presses (press=50)",
		},
		{
			err:  &RuntimeError{Code: ErrCodeNonTermination, Message: "loop", Module: "x", Press: 2},
			want: "NON_TERMINATION: loop (module=x, press=2)",
		},
		{
			err:  &RuntimeError{Code: ErrCodeNonTermination, Message: "loop"},
			want: "NON_TERMINATION: loop",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestRuntimeError_Predicates(t *testing.T) {
	structure := fmt.Errorf("period: %w", NewStructureError("rx", "bad"))
	limit := fmt.Errorf("period: %w", NewPressLimitError(10, []string{"ainv"}))

	assert.True(t, IsStructureError(structure))
	assert.False(t, IsPressLimit(structure))
	assert.False(t, IsNonTermination(structure))

	assert.True(t, IsPressLimit(limit))
	assert.False(t, IsStructureError(limit))

	assert.False(t, IsStructureError(fmt.Errorf("plain")))
}

func TestNewPressLimitError_Details(t *testing.T) {
	err := NewPressLimitError(10, []string{"ainv", "binv"})
	assert.Equal(t, "10", err.Details["max_presses"])
	assert.Equal(t, "[ainv binv]", err.Details["pending"])
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeStructureViolation, ErrorCode(fmt.Errorf("x: %w", NewStructureError("rx", "bad"))))
	assert.Equal(t, ErrCodeNonTermination, ErrorCode(&SignalsExceededError{Press: 1}))
	assert.Equal(t, RuntimeErrorCode(""), ErrorCode(fmt.Errorf("plain")))
	assert.Equal(t, RuntimeErrorCode(""), ErrorCode(nil))
}
