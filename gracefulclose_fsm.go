package h2keepalive

// This file implements the GracefulCloseFSM transition table, §4.5. All
// methods assume they run on the dispatcher goroutine.

// onUserInitiateGracefulClose handles userInitiate(local), transitions 1 and 7.
func (m *Manager) onUserInitiateGracefulClose(whenInitiated func(), local bool) {
	if m.isClosed() {
		return
	}
	if m.gracefulClose.kind != slotIdle {
		// Transition 7: re-entrant initiation is swallowed.
		return
	}
	if whenInitiated != nil {
		whenInitiated()
	}
	m.gracefulClose = slot{kind: slotStarted}

	debug := debugRemote
	if local {
		debug = debugLocal
	}
	m.logEvent(LevelDebug, "graceful close started", map[string]any{"local": local})

	// GOAWAY1 is written without an immediate flush; the PING write that
	// follows flushes both.
	err := m.transport.WriteGoAway(MaxStreamID, goAwayErrCode, debug)
	if err == nil {
		err = m.ping.sendGracefulClose()
	}
	m.onGracefulCloseFirstWriteCompleted(err)
}

// onGracefulCloseFirstWriteCompleted handles firstWriteCompleted, transitions 2-3.
func (m *Manager) onGracefulCloseFirstWriteCompleted(err error) {
	if err != nil {
		m.close0(err)
		return
	}
	if m.gracefulClose.kind != slotStarted {
		// The ACK already arrived (e.g. a non-synchronous Transport
		// implementation raced it in): no timer needed.
		return
	}
	m.gracefulClose = slot{kind: slotInFlight, timer: m.scheduler.AfterFunc(m.cfg.ackTimeout, func() {
		m.dispatcher.dispatch(m.onGracefulCloseAckTimeout)
	})}
}

// onGracefulClosePingAck handles pingAckReceived(gracefulClosePingContent), transition 4.
func (m *Manager) onGracefulClosePingAck() {
	if m.isClosed() {
		return
	}
	switch m.gracefulClose.kind {
	case slotStarted, slotInFlight:
		m.gracefulClose.cancelTimer(m.cfg.logger)
		m.writeSecondGoAway(nil)
	default:
		m.logEvent(LevelDebug, "graceful-close ping-ack outside an active cycle ignored", nil)
	}
}

// onGracefulCloseAckTimeout handles ackTimeoutFired, transition 5.
func (m *Manager) onGracefulCloseAckTimeout() {
	if m.isClosed() || m.gracefulClose.kind != slotInFlight {
		return
	}
	m.writeSecondGoAway(&StacklessTimeoutError{Op: "graceful-close ack"})
}

// writeSecondGoAway implements transition 6: idempotent, guarded by the slot
// not already being SecondGoAwaySent.
func (m *Manager) writeSecondGoAway(cause error) {
	if m.gracefulClose.kind == slotSecondGoAwaySent {
		return
	}
	m.gracefulClose = slot{kind: slotSecondGoAwaySent}

	debug := debugSecond
	if cause != nil {
		debug = debugGracefulCloseTimeout
	}
	err := m.transport.WriteGoAway(uint32(m.streams.highestStreamID()), goAwayErrCode, debug)
	if err == nil {
		err = m.transport.Flush()
	}
	m.onSecondGoAwayWriteCompleted(err, cause)
}

// onSecondGoAwayWriteCompleted implements the rest of transition 6: the
// write-completion branch. A successful write after a graceful-close
// *timeout* (cause != nil) never waits for streams to drain — only the
// happy (ACK-received) path does, per §9's open-question resolution.
func (m *Manager) onSecondGoAwayWriteCompleted(writeErr, cause error) {
	if writeErr != nil {
		m.close0(withSuppressed(writeErr, cause))
		return
	}
	if cause != nil || m.streams.load() == 0 {
		m.close0(cause)
		return
	}
	m.logEvent(LevelDebug, "second goaway sent, awaiting stream drain", map[string]any{"activeStreams": m.streams.load()})
}

// onStreamCountReachedZero implements §4.6's drain trigger: fires at most
// once per graceful-close cycle because close0 moves both slots to Closed.
func (m *Manager) onStreamCountReachedZero() {
	if m.isClosed() {
		return
	}
	if m.gracefulClose.kind == slotSecondGoAwaySent {
		m.close0(nil)
	}
}

// onGracefulCloseChannelClosed handles channelClosed for this slot. Invoked
// from close0.
func (m *Manager) onGracefulCloseChannelClosed() {
	m.gracefulClose.cancelTimer(m.cfg.logger)
	m.gracefulClose = slot{kind: slotClosed}
}
