package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeStorage, cause, "load items")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "STORAGE_ERROR: load items: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidWeight, "test"), ErrCodeInvalidWeight, true},
		{"non-matching code", New(ErrCodeInvalidWeight, "test"), ErrCodeStorage, false},
		{"wrapped error", Wrap(ErrCodeStorage, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeStorage, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidGroupBy, "unknown group_by %q", "color")
	if got := GetCode(err); got != ErrCodeInvalidGroupBy {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidGroupBy)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
	if got, want := UserMessage(err), `unknown group_by "color"`; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(New(ErrCodeInvalidDimensions, "x")) {
		t.Error("INVALID_DIMENSIONS should be a validation error")
	}
	if IsValidation(New(ErrCodeStorage, "x")) {
		t.Error("STORAGE_ERROR should not be a validation error")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("plain errors are not validation errors")
	}
}
