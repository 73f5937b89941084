package h2keepalive

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// =============================================================================
// Shared test fakes
//
// fakeTransport implements Transport, DuplexTransport, and TLSCloser all at
// once (tests opt into the duplex/TLS surface by asserting on the narrower
// interfaces, same as Manager.New does via type assertion).
// =============================================================================

type goAwayCall struct {
	lastStreamID uint32
	errCode      http2.ErrCode
	debug        string
}

type pingCall struct {
	ack  bool
	data [8]byte
}

type fakeTransport struct {
	mu sync.Mutex

	pings      []pingCall
	goAways    []goAwayCall
	flushes    int
	emptyWrite int
	closed     bool
	closeErr   error

	outputShutdown bool
	inputShutdown  bool

	closeNotifySent bool
	closeNotifyErr  error
	// closeNotifyAsync, if set, means CloseOutbound doesn't call done
	// synchronously; the test must call closeNotifyDone itself.
	closeNotifyAsync bool
	closeNotifyDone  func(error)

	// Hooks let a test inject a failure or a side effect at a specific point.
	onWritePing    func(ack bool, data [8]byte) error
	onWriteGoAway  func(lastStreamID uint32, errCode http2.ErrCode, debug []byte) error
	onWriteEmpty   func() error
	onFlush        func() error
	onShutdownOut  func() error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

func (f *fakeTransport) WritePing(ack bool, data [8]byte) error {
	f.mu.Lock()
	f.pings = append(f.pings, pingCall{ack: ack, data: data})
	f.mu.Unlock()
	if f.onWritePing != nil {
		return f.onWritePing(ack, data)
	}
	return nil
}

func (f *fakeTransport) WriteGoAway(lastStreamID uint32, errCode http2.ErrCode, debugData []byte) error {
	f.mu.Lock()
	f.goAways = append(f.goAways, goAwayCall{lastStreamID: lastStreamID, errCode: errCode, debug: string(debugData)})
	f.mu.Unlock()
	if f.onWriteGoAway != nil {
		return f.onWriteGoAway(lastStreamID, errCode, debugData)
	}
	return nil
}

func (f *fakeTransport) WriteEmpty() error {
	f.mu.Lock()
	f.emptyWrite++
	f.mu.Unlock()
	if f.onWriteEmpty != nil {
		return f.onWriteEmpty()
	}
	return nil
}

func (f *fakeTransport) Flush() error {
	f.mu.Lock()
	f.flushes++
	f.mu.Unlock()
	if f.onFlush != nil {
		return f.onFlush()
	}
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) CloseWithError(cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeErr = cause
	return nil
}

func (f *fakeTransport) ShutdownOutput() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputShutdown = true
	if f.onShutdownOut != nil {
		return f.onShutdownOut()
	}
	return nil
}

func (f *fakeTransport) InputShutdown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputShutdown
}

func (f *fakeTransport) OutputShutdown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outputShutdown
}

func (f *fakeTransport) CloseOutbound(done func(error)) {
	f.mu.Lock()
	f.closeNotifySent = true
	f.mu.Unlock()
	if f.closeNotifyAsync {
		f.closeNotifyDone = done
		return
	}
	done(f.closeNotifyErr)
}

func (f *fakeTransport) snapshot() (pings []pingCall, goAways []goAwayCall, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pingCall{}, f.pings...), append([]goAwayCall{}, f.goAways...), f.closed
}

func (f *fakeTransport) lastCloseErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeErr
}

// =============================================================================
// fakeScheduler: a Scheduler whose timers never fire on their own. Tests
// advance them explicitly via fireLatest(), keeping FSM tests deterministic instead
// of racing a real clock.
// =============================================================================

type fakeTimer struct {
	cancelled bool
	fired     bool
	task      func()
}

func (t *fakeTimer) Cancel() bool {
	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, task func()) TimerHandle {
	t := &fakeTimer{task: task}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

// fireLatest runs the most recently scheduled, still-live timer's task
// synchronously, as a real timer would from its own goroutine.
func (s *fakeScheduler) fireLatest() bool {
	s.mu.Lock()
	var target *fakeTimer
	for i := len(s.timers) - 1; i >= 0; i-- {
		if !s.timers[i].cancelled && !s.timers[i].fired {
			target = s.timers[i]
			break
		}
	}
	s.mu.Unlock()
	if target == nil {
		return false
	}
	target.fired = true
	target.task()
	return true
}

func (s *fakeScheduler) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

// =============================================================================
// fakeIdleness: a no-op IdlenessDetector. Tests that need to simulate
// idleness call the captured onIdle callback directly instead of waiting on
// a real watchdog.
// =============================================================================

type fakeIdleness struct {
	mu       sync.Mutex
	onIdle   func()
	canceled bool
}

func (f *fakeIdleness) Configure(_ Transport, _ time.Duration, onIdle func()) (cancel func()) {
	f.mu.Lock()
	f.onIdle = onIdle
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.canceled = true
		f.mu.Unlock()
	}
}

func (f *fakeIdleness) configured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onIdle != nil
}

func (f *fakeIdleness) fire() {
	f.mu.Lock()
	cb := f.onIdle
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// =============================================================================
// Synchronous test harness: since dispatch.go runs its worker on its own
// goroutine, tests that need strict ordering run the Manager with Run() and
// then use runSync to block until a submitted closure has actually executed,
// via a done channel. Manager methods under test are mostly invoked directly
// (they each just call m.dispatcher.dispatch internally and return).
// =============================================================================

func runSync(m *Manager, fn func()) {
	done := make(chan struct{})
	m.dispatcher.dispatch(func() {
		fn()
		close(done)
	})
	<-done
}

var errBoom = errors.New("boom")
