package h2keepalive

// This file implements the KeepAliveFSM transition table, §4.4. All methods
// here assume they are already running on the dispatcher goroutine (they are
// only ever invoked from inside a dispatcher.dispatch closure).

// onIdleDetected handles idleDetected (transition 1 and 4).
func (m *Manager) onIdleDetected() {
	if m.isClosed() {
		return
	}
	if m.keepAlive.kind != slotIdle {
		// A probe is already in flight or has already failed this cycle:
		// transition 4, a deliberate no-op.
		return
	}
	if m.streams.load() == 0 && !m.cfg.withoutActiveStreams {
		// Boundary behavior (§8): withoutActiveStreams=false and no active
		// streams means idleDetected must not send a PING.
		return
	}

	// Provisional-then-confirm pattern (§4.4 Rationale, §9): move to the
	// sentinel InFlight{timer=nil} *before* the write so a synchronously
	// arriving ACK (observed by PingProtocol in the window between write
	// submission and completion) is never lost.
	m.keepAlive = slot{kind: slotInFlight, timer: nil}

	err := m.ping.sendKeepAlive()
	if err != nil {
		m.close0(err)
		return
	}
	// Write completed successfully. Only install the timer if nothing else
	// has changed the slot in the meantime (i.e. no ACK arrived inline).
	if m.keepAlive.kind == slotInFlight && m.keepAlive.timer == nil {
		m.keepAlive.timer = m.scheduler.AfterFunc(m.cfg.ackTimeout, func() {
			m.dispatcher.dispatch(m.onKeepAliveAckTimeout)
		})
	}
}

// onKeepAlivePingAck handles pingAckReceived(keepAlivePingContent), transition 2.
func (m *Manager) onKeepAlivePingAck() {
	if m.isClosed() {
		return
	}
	if m.keepAlive.kind != slotInFlight {
		// Stale ACK: no probe currently outstanding. Silently ignored per
		// §8 idempotence properties.
		m.logEvent(LevelDebug, "keep-alive ping-ack with no probe in flight", nil)
		return
	}
	m.keepAlive.cancelTimer(m.cfg.logger)
	m.keepAlive = idleSlot()
	m.logEvent(LevelTrace, "keep-alive ack received", nil)
}

// onKeepAliveAckTimeout handles ackTimeoutFired, transition 3.
func (m *Manager) onKeepAliveAckTimeout() {
	if m.isClosed() || m.keepAlive.kind != slotInFlight {
		return
	}
	m.keepAlive = slot{kind: slotTimedOut}
	timeoutErr := &StacklessTimeoutError{Op: "keep-alive ack"}
	writeErr := m.transport.WriteGoAway(MaxStreamID, goAwayErrCode, debugKeepAliveTimeout)
	if writeErr == nil {
		writeErr = m.transport.Flush()
	}
	if writeErr != nil {
		m.close0(withSuppressed(writeErr, timeoutErr))
		return
	}
	m.close0(timeoutErr)
}

// onKeepAliveChannelClosed handles channelClosed, transition 5, for this
// slot specifically. Invoked from close0.
func (m *Manager) onKeepAliveChannelClosed() {
	m.keepAlive.cancelTimer(m.cfg.logger)
	m.keepAlive = slot{kind: slotClosed}
}
