package models

import "testing"

func TestRequestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status RequestStatus
		want   bool
	}{
		{RequestStatusPending, true},
		{RequestStatusResolved, true},
		{RequestStatusUnresolved, true},
		{RequestStatus("pending"), false},
		{RequestStatus("Escalated"), false},
		{RequestStatus(""), false},
	}

	for _, tt := range tests {
		if got := tt.status.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	if RequestStatusPending.IsTerminal() {
		t.Error("Pending must not be terminal")
	}
	if !RequestStatusResolved.IsTerminal() || !RequestStatusUnresolved.IsTerminal() {
		t.Error("Resolved and Unresolved are terminal states")
	}
}
