package h2keepalive

import (
	"errors"
	"fmt"
)

// StacklessTimeoutError models a timeout the component itself detected
// (PING-ACK wait, input-shutdown wait). It deliberately carries no captured
// stack trace: these fire routinely on an otherwise healthy connection
// (a peer that's simply gone) and a stack trace would be pure overhead.
type StacklessTimeoutError struct {
	// Op names the wait that expired, e.g. "keep-alive ack", "graceful-close ack",
	// "input shutdown".
	Op string
}

func (e *StacklessTimeoutError) Error() string {
	return fmt.Sprintf("h2keepalive: timed out waiting for %s", e.Op)
}

// IllegalStateError models a protocol violation detected at half-close time:
// the peer did something the state machine cannot legally continue past.
type IllegalStateError struct {
	Message string
}

func (e *IllegalStateError) Error() string {
	return "h2keepalive: illegal state: " + e.Message
}

// SuppressedError composes a primary cause with one or more causes that also
// occurred but are secondary to it, preserving both in the Unwrap chain so
// errors.Is/errors.As see the whole picture. The first write failure to
// reach close0 always wins as Primary; a timeout that was already in flight
// is attached as Suppressed rather than discarded.
type SuppressedError struct {
	Primary    error
	Suppressed []error
}

func (e *SuppressedError) Error() string {
	if len(e.Suppressed) == 0 {
		return e.Primary.Error()
	}
	s := e.Primary.Error() + " (suppressed:"
	for i, sub := range e.Suppressed {
		if i > 0 {
			s += ";"
		}
		s += " " + sub.Error()
	}
	return s + ")"
}

// Unwrap exposes the primary cause plus every suppressed cause so both
// errors.Is and errors.As can match against any of them.
func (e *SuppressedError) Unwrap() []error {
	return append([]error{e.Primary}, e.Suppressed...)
}

// withSuppressed returns primary unchanged if extra is nil, otherwise wraps
// both into a *SuppressedError. primary may itself be nil, in which case
// extra (if non-nil) is promoted to the primary cause of a plain error
// (no composition needed).
func withSuppressed(primary, extra error) error {
	switch {
	case primary == nil:
		return extra
	case extra == nil:
		return primary
	default:
		var agg *SuppressedError
		if errors.As(primary, &agg) {
			return &SuppressedError{Primary: agg.Primary, Suppressed: append(append([]error{}, agg.Suppressed...), extra)}
		}
		return &SuppressedError{Primary: primary, Suppressed: []error{extra}}
	}
}
