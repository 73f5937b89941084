// Package h2keepalive implements the per-connection keep-alive and
// graceful-close manager for an HTTP/2 endpoint: idle-probe PING/PING-ACK
// with timeout, and the RFC 7540 §6.8 two-GOAWAY graceful-close procedure,
// multiplexed over one connection and serialized on a single goroutine.
//
// Frame parsing/encoding, stream multiplexing, the TLS engine, and the I/O
// event loop itself are all external collaborators (see Transport,
// Scheduler, IdlenessDetector, TLSCloser); this package owns only the state
// machine that decides when to write a PING or a GOAWAY and when to tear the
// connection down.
package h2keepalive

import (
	"golang.org/x/net/http2"
)

// Manager is bound 1:1 to a connection for its entire lifetime. The zero
// value is not usable; construct with New.
type Manager struct {
	cfg       *config
	transport Transport
	duplex    DuplexTransport // nil if transport doesn't support half-close
	tls       TLSCloser       // nil if the connection isn't TLS-secured
	scheduler Scheduler
	idleness  IdlenessDetector

	dispatcher *dispatcher
	ping       pingProtocol
	streams    streamAccounting

	keepAlive     slot
	gracefulClose slot

	inputShutdownTimer TimerHandle

	idleCancel func()
	running    bool
}

// New constructs a Manager for one connection. transport, scheduler, and
// idleness are required collaborators; passing a nil transport is a
// programming error and panics immediately rather than being tolerated at
// runtime.
func New(transport Transport, scheduler Scheduler, idleness IdlenessDetector, opts ...Option) *Manager {
	if transport == nil {
		panic("h2keepalive: transport must not be nil")
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		panic("h2keepalive: " + err.Error())
	}
	m := &Manager{
		cfg:           cfg,
		transport:     transport,
		scheduler:     scheduler,
		idleness:      idleness,
		dispatcher:    newDispatcher(),
		ping:          pingProtocol{transport: transport},
		keepAlive:     idleSlot(),
		gracefulClose: idleSlot(),
	}
	if d, ok := transport.(DuplexTransport); ok {
		m.duplex = d
	}
	if t, ok := transport.(TLSCloser); ok {
		m.tls = t
	}
	m.logEvent(LevelDebug, "manager constructed", map[string]any{
		"idleDuration":         cfg.idleDuration,
		"ackTimeout":           cfg.ackTimeout,
		"withoutActiveStreams": cfg.withoutActiveStreams,
		"duplex":               m.duplex != nil,
		"tls":                  m.tls != nil,
	})
	return m
}

// Run starts the manager's dispatcher goroutine and installs the idleness
// watchdog (if keep-alive probing is enabled). It must be called exactly
// once, after the connection is ready, and returns immediately — the
// dispatcher goroutine runs until Close (or an internal close0) stops it.
func (m *Manager) Run() {
	if m.running {
		return
	}
	m.running = true
	go m.dispatcher.run()
	if m.cfg.idleDuration > 0 {
		m.dispatcher.dispatch(func() {
			m.idleCancel = m.idleness.Configure(m.transport, m.cfg.idleDuration, func() {
				m.dispatcher.dispatch(m.onIdleDetected)
			})
		})
	}
}

// RegisterStream tells the manager to track one more active stream (§4.6),
// identified by its HTTP/2 stream id (used as last_stream_id on the second
// GOAWAY). onClose must be called by the caller's stream registry exactly
// once, when that stream's close signal fires; it may be called from any
// goroutine.
func (m *Manager) RegisterStream(streamID uint32) (onClose func()) {
	m.streams.register(streamID)
	var fired bool
	return func() {
		if fired {
			return
		}
		fired = true
		_, reachedZero := m.streams.closed()
		if reachedZero {
			m.dispatcher.dispatch(m.onStreamCountReachedZero)
		}
	}
}

// ActiveStreams returns a snapshot of the active-stream counter.
func (m *Manager) ActiveStreams() int64 {
	return m.streams.load()
}

// OnPingReceived feeds a received PING frame into the manager. May be called
// from any goroutine; always re-dispatched onto the event-loop goroutine.
func (m *Manager) OnPingReceived(ack bool, data [8]byte) {
	m.dispatcher.dispatch(func() {
		if m.isClosed() {
			return
		}
		if !ack {
			if err := m.ping.receivePing(false, data); err != nil {
				m.close0(err)
			}
			return
		}
		switch classifyPingAck(data) {
		case pingKeepAlive:
			m.onKeepAlivePingAck()
		case pingGracefulClose:
			m.onGracefulClosePingAck()
		default:
			m.logEvent(LevelDebug, "ping-ack with unknown payload ignored", nil)
		}
	})
}

// OnInputHalfClose notifies the manager that the peer has half-closed its
// output direction (our input). Only meaningful for duplex transports.
func (m *Manager) OnInputHalfClose() {
	m.dispatcher.dispatch(m.onInputHalfCloseObserved)
}

// OnOutputHalfClose notifies the manager that this side's output has been
// half-closed (e.g. because the surrounding layer shut it down directly,
// outside of close0). Only meaningful for duplex transports.
func (m *Manager) OnOutputHalfClose() {
	m.dispatcher.dispatch(m.onOutputHalfCloseObserved)
}

// OnChannelClosed notifies the manager the connection is gone, regardless of
// cause. Idempotent.
func (m *Manager) OnChannelClosed() {
	m.dispatcher.dispatch(func() { m.close0(nil) })
}

// InitiateGracefulClose starts the two-GOAWAY procedure (§4.5). whenInitiated
// runs before any frame is written, on the event-loop goroutine, giving the
// caller a chance to stop accepting new streams. local distinguishes a
// locally-initiated close (debug="0.local") from one initiated because the
// peer asked for one (debug="1.remote"). Re-entrant calls after the first
// are a no-op.
func (m *Manager) InitiateGracefulClose(whenInitiated func(), local bool) {
	m.dispatcher.dispatch(func() {
		m.onUserInitiateGracefulClose(whenInitiated, local)
	})
}

// Close tears the connection down immediately with no particular cause.
// Equivalent to OnChannelClosed but named for direct caller use.
func (m *Manager) Close() {
	m.dispatcher.dispatch(func() { m.close0(nil) })
}

func (m *Manager) isClosed() bool {
	return m.keepAlive.kind == slotClosed && m.gracefulClose.kind == slotClosed
}

func (m *Manager) logEvent(level Level, msg string, fields map[string]any) {
	if !m.cfg.logger.Enabled(level) {
		return
	}
	m.cfg.logger.Log(Event{Level: level, Message: msg, Fields: fields})
}

// goAwayErrCode is always NO_ERROR for frames this component emits (§6).
const goAwayErrCode = http2.ErrCodeNo
