package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("no reachable servers")
	err := NewStorageError("create help request", cause)

	if !IsStorageError(err) {
		t.Error("Expected IsStorageError to report true")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected the cause to be reachable through Unwrap")
	}

	wrapped := fmt.Errorf("request failed: %w", err)
	if !IsStorageError(wrapped) {
		t.Error("Expected IsStorageError to see through wrapping")
	}
}

func TestIsStorageError_OtherErrors(t *testing.T) {
	for _, err := range []error{nil, ErrInvalidInput, ErrNotFound, ErrAlreadyClosed} {
		if IsStorageError(err) {
			t.Errorf("IsStorageError(%v) = true, want false", err)
		}
	}
}
