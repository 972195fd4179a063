package ctraderfix

import (
	"errors"
	"testing"
)

// TestError_IsMatchesByKindOnly verifies errors.Is matches any two Errors
// sharing a Kind regardless of Reason, so callers can match against the
// Kind-only sentinels without knowing the Reason text.
func TestError_IsMatchesByKindOnly(t *testing.T) {
	err := New(Timeout, "subscribe cancelled")
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected errors.Is to match same-Kind sentinel regardless of Reason")
	}
	if errors.Is(err, ErrDisconnected) {
		t.Error("expected errors.Is to not match a different Kind")
	}
}

// TestError_ErrorStringIncludesReasonWhenPresent verifies Error() includes
// the Reason detail when set, and falls back to just the Kind otherwise.
func TestError_ErrorStringIncludesReasonWhenPresent(t *testing.T) {
	withReason := New(RequestRejected, "unknown symbol")
	if got, want := withReason.Error(), "request_rejected: unknown symbol"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noReason := &Error{Kind: Disconnected}
	if got, want := noReason.Error(), "disconnected"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
