package h2keepalive

import (
	"time"

	"golang.org/x/net/http2"
)

// MaxStreamID is the largest legal HTTP/2 stream id, used as last_stream_id
// on the first GOAWAY to fence off every stream the peer might open before
// it has seen the GOAWAY (RFC 7540 §6.8).
const MaxStreamID = 1<<31 - 1

// Transport is the collaborator interface this component writes frames to.
// It deliberately does not know anything about streams or flow control:
// those are "someone else's problem" per §1 Deliberately out of scope. Frame
// encoding itself is delegated to golang.org/x/net/http2 constants.
//
// Implementations are only ever driven from the Manager's dispatcher
// goroutine; they need not be safe for concurrent use from multiple
// goroutines, only safe to be reused across frame writes.
type Transport interface {
	// WritePing writes a PING frame. ack must be false for probes this
	// component initiates and true when echoing a received probe.
	WritePing(ack bool, data [8]byte) error
	// WriteGoAway writes a GOAWAY frame. errCode is always http2.ErrCodeNo
	// for frames this component emits (§6).
	WriteGoAway(lastStreamID uint32, errCode http2.ErrCode, debugData []byte) error
	// WriteEmpty flushes an empty buffer, draining anything queued behind a
	// prior write without adding a new frame to the wire (§4.8 step 3).
	WriteEmpty() error
	// Flush forces any buffered frame writes out to the network.
	Flush() error
	// Close closes the connection with no particular cause.
	Close() error
	// CloseWithError closes the connection, attributing it to cause.
	CloseWithError(cause error) error
}

// DuplexTransport is implemented by transports that support half-close: an
// independent shutdown of each direction (§4.7). Transports that don't
// implement this are treated as non-duplex — any observed half-close means
// full close.
type DuplexTransport interface {
	Transport
	// ShutdownOutput half-closes the write direction only.
	ShutdownOutput() error
	// InputShutdown reports whether the peer has half-closed its output
	// (our input) already.
	InputShutdown() bool
	// OutputShutdown reports whether this side's output has been
	// half-closed already.
	OutputShutdown() bool
}

// TLSCloser is the optional collaborator used to emit the TLS close_notify
// alert (RFC 5246 §7.2.1) ahead of output shutdown, when the connection is
// TLS-secured (§4.8 step 3).
type TLSCloser interface {
	// CloseOutbound sends close_notify and invokes done once the write
	// settles (nil on success).
	CloseOutbound(done func(error))
}

// TimerHandle is returned by Scheduler.AfterFunc; Cancel is idempotent and
// best-effort (§5 Cancellation) — a timer that has already fired is a no-op
// to cancel, not an error.
type TimerHandle interface {
	Cancel() bool
}

// Scheduler abstracts the timer wheel this component needs for ACK-timeout
// and input-shutdown-timeout waits. Tasks scheduled here are expected to run
// on, or be redispatched onto, the connection's event-loop goroutine — the
// Manager's own dispatcher re-enters through itself regardless (§6), so a
// Scheduler that merely fires on its own goroutine is still safe to use.
type Scheduler interface {
	AfterFunc(d time.Duration, task func()) TimerHandle
}

// IdlenessDetector installs a transport-level watchdog that fires onIdle
// after idleThreshold has elapsed with no read and no write activity on ch.
// Configure returns a cancel function removing the watchdog.
type IdlenessDetector interface {
	Configure(ch Transport, idleThreshold time.Duration, onIdle func()) (cancel func())
}
