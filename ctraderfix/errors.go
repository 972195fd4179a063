// Package ctraderfix holds error kinds shared across the session, router,
// market and trade packages so callers can match failures with
// errors.Is/errors.As regardless of which package raised them.
package ctraderfix

import "fmt"

// Kind classifies an Error without requiring string matching on Reason.
type Kind string

const (
	Transport                 Kind = "transport"
	MalformedFrame            Kind = "malformed_frame"
	ChecksumMismatch          Kind = "checksum_mismatch"
	SequenceGap               Kind = "sequence_gap"
	LogonRejected             Kind = "logon_rejected"
	RequestRejected           Kind = "request_rejected"
	Timeout                   Kind = "timeout"
	Disconnected              Kind = "disconnected"
	NotLoggedOn               Kind = "not_logged_on"
	UnknownSymbol             Kind = "unknown_symbol"
	SubscriptionAlreadyActive Kind = "subscription_already_active"
	NoSuchSubscription        Kind = "no_such_subscription"
)

// Error is the concrete error type returned by this module. Callers match
// on Kind via errors.Is against the sentinel values below, or errors.As to
// recover the Reason detail.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is a sentinel for the same Kind, so that
// errors.Is(err, ctraderfix.ErrTimeout) works without comparing Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Sentinel values for errors.Is comparisons; Reason is ignored by Is.
var (
	ErrTransport                 = &Error{Kind: Transport}
	ErrMalformedFrame            = &Error{Kind: MalformedFrame}
	ErrChecksumMismatch          = &Error{Kind: ChecksumMismatch}
	ErrSequenceGap               = &Error{Kind: SequenceGap}
	ErrLogonRejected             = &Error{Kind: LogonRejected}
	ErrRequestRejected           = &Error{Kind: RequestRejected}
	ErrTimeout                   = &Error{Kind: Timeout}
	ErrDisconnected              = &Error{Kind: Disconnected}
	ErrNotLoggedOn               = &Error{Kind: NotLoggedOn}
	ErrUnknownSymbol             = &Error{Kind: UnknownSymbol}
	ErrSubscriptionAlreadyActive = &Error{Kind: SubscriptionAlreadyActive}
	ErrNoSuchSubscription        = &Error{Kind: NoSuchSubscription}
)

// New builds an *Error carrying a Reason, for call sites that need to
// attach detail beyond the Kind.
func New(kind Kind, reason string) *Error {
	return newErr(kind, reason)
}
