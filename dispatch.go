package h2keepalive

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-h2keepalive/internal/goid"
)

// dispatcher is the EventDispatcher of §4.1: it ensures every public
// entrypoint of the Manager runs on exactly one goroutine, trampolining
// off-goroutine calls through a task channel and executing inline when the
// caller is already on that goroutine (verified, not assumed, via
// internal/goid — a false negative there just costs an extra hop through
// the channel; a false positive is impossible because goid.Current reports
// the exact numeric goroutine id).
//
// This is the single-writer mechanism that lets every FSM transition in this
// package be written as ordinary, unsynchronized Go code.
type dispatcher struct {
	tasks   chan func()
	done    chan struct{}
	closeMu sync.Once
	ownerID atomic.Uint64 // goroutine id of Run's goroutine, 0 until started
	started atomic.Bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// run is the dispatcher's single worker goroutine. It must be started
// exactly once, typically from Manager.Run.
func (d *dispatcher) run() {
	d.ownerID.Store(goid.Current())
	d.started.Store(true)
	for {
		select {
		case task := <-d.tasks:
			task()
		case <-d.done:
			// Drain anything already queued so in-flight write-completion
			// and timer continuations still observe a consistent final
			// state transition to Closed, rather than being silently lost.
			for {
				select {
				case task := <-d.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// dispatch runs fn on the dispatcher goroutine: inline if the caller is
// already there, otherwise enqueued and run asynchronously. Returns false if
// the dispatcher has already stopped (fn is dropped in that case).
func (d *dispatcher) dispatch(fn func()) bool {
	if d.started.Load() && goid.Current() == d.ownerID.Load() {
		fn()
		return true
	}
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.tasks <- fn:
		return true
	case <-d.done:
		return false
	}
}

// stop terminates the worker goroutine after draining queued tasks. Safe to
// call multiple times.
func (d *dispatcher) stop() {
	d.closeMu.Do(func() {
		close(d.done)
	})
}
