package h2keepalive

// This file implements the ShutdownSequencer, §4.8: close0(cause). It is
// idempotent, guarded by both slots already being Closed, and is the single
// funnel every other component in this package routes through to tear the
// connection down.

// close0 is the common close procedure referenced throughout §4.4-§4.7.
func (m *Manager) close0(cause error) {
	if m.isClosed() {
		return
	}

	// Step 1: force both slots -> Closed, cancel outstanding timers.
	m.onKeepAliveChannelClosed()
	m.onGracefulCloseChannelClosed()
	if m.idleCancel != nil {
		m.idleCancel()
		m.idleCancel = nil
	}
	if m.inputShutdownTimer != nil {
		m.inputShutdownTimer.Cancel()
		m.inputShutdownTimer = nil
	}

	level := LevelDebug
	if cause != nil {
		level = LevelWarn
	}
	m.logEvent(level, "channel closing", map[string]any{
		"activeStreams": m.streams.load(),
		"cause":         cause,
	})

	// Step 2: a prior I/O failure makes further flushes futile.
	if cause != nil {
		if err := m.transport.CloseWithError(cause); err != nil {
			m.logEvent(LevelDebug, "close with cause reported its own error", map[string]any{"err": err})
		}
		m.dispatcher.stop()
		return
	}

	// Step 3: an empty flush is a correctness requirement, not an
	// optimization — it guarantees any frames the encoder buffered behind
	// the second GOAWAY (due to stream-state races) are observed before we
	// shut anything down.
	if err := m.transport.WriteEmpty(); err != nil {
		m.transport.CloseWithError(err)
		m.dispatcher.stop()
		return
	}

	if m.tls != nil {
		m.tls.CloseOutbound(func(err error) {
			m.dispatcher.dispatch(func() { m.afterCloseNotify(err) })
		})
		return
	}
	m.afterCloseNotify(nil)
}

// afterCloseNotify runs once the TLS close_notify write (if any) has
// settled, or immediately if there's no TLS engine in play.
func (m *Manager) afterCloseNotify(err error) {
	if err != nil {
		m.transport.CloseWithError(err)
		m.dispatcher.stop()
		return
	}

	if m.duplex == nil {
		// No half-close support: nothing to wait on reciprocally.
		m.transport.Close()
		m.dispatcher.stop()
		return
	}

	if err := m.duplex.ShutdownOutput(); err != nil {
		m.transport.CloseWithError(err)
		m.dispatcher.stop()
		return
	}

	if m.duplex.InputShutdown() {
		m.transport.Close()
		m.dispatcher.stop()
		return
	}

	// Step 4: bounded wait for the peer's reciprocal input-shutdown.
	// onInputHalfCloseObserved (halfclose.go) handles the "arrives first"
	// branch by cancelling this timer and finishing the close itself.
	m.inputShutdownTimer = m.scheduler.AfterFunc(m.cfg.ackTimeout, func() {
		m.dispatcher.dispatch(func() {
			m.inputShutdownTimer = nil
			m.transport.CloseWithError(&StacklessTimeoutError{Op: "input shutdown"})
			m.dispatcher.stop()
		})
	})
}
