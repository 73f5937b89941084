package h2keepalive

// This file implements the HalfCloseCoordinator, §4.7. It only applies when
// the transport is duplex (supports independent half-close of each
// direction); for non-duplex transports, any observed half-close means full
// close.

// onOutputHalfCloseObserved handles the transport reporting that this
// side's output has been half-closed.
func (m *Manager) onOutputHalfCloseObserved() {
	if m.isClosed() {
		return
	}
	if m.duplex == nil {
		m.close0(nil)
		return
	}
	if m.duplex.InputShutdown() {
		// Both directions are down already; nothing left to wait on.
		m.close0(nil)
		return
	}
	if m.gracefulClose.kind != slotSecondGoAwaySent {
		m.close0(&IllegalStateError{
			Message: "peer half-closed output before we completed the protocol; we cannot legally continue reading",
		})
		return
	}
	// Expected mid-drain state: output is down, graceful close already
	// reached SecondGoAwaySent, input may still be open. No-op.
}

// onInputHalfCloseObserved handles the transport reporting that the peer has
// half-closed its output (our input). It plays two roles depending on what
// phase the manager is in: before close0 starts, it's the §4.7 race check;
// during close0's post-output-shutdown wait, it's the reciprocal-shutdown
// signal that §4.8 step 4 is waiting for.
func (m *Manager) onInputHalfCloseObserved() {
	if m.isClosed() {
		// §4.8 step 4: input shutdown arrived before our timeout — cancel
		// the timer and finish the hard close immediately.
		if m.inputShutdownTimer != nil {
			m.inputShutdownTimer.Cancel()
			m.inputShutdownTimer = nil
			m.transport.Close()
			m.dispatcher.stop()
		}
		return
	}
	if m.duplex == nil {
		m.close0(nil)
		return
	}
	if m.duplex.OutputShutdown() {
		m.close0(nil)
		return
	}
	if m.gracefulClose.kind != slotSecondGoAwaySent {
		m.close0(&IllegalStateError{
			Message: "input shutdown while graceful closure is in progress",
		})
		return
	}
	// Expected mid-drain state: no-op.
}
