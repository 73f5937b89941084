package h2keepalive

import "sync/atomic"

// streamAccounting implements §4.6: the active-stream counter and its
// close-listener bookkeeping. register/closed are the only methods touched
// from goroutines other than the dispatcher's — the counter itself is an
// atomic.Int64, and any decision that depends on both the counter and FSM
// state is always re-dispatched onto the event-loop goroutine first.
type streamAccounting struct {
	count  atomic.Int64
	highID atomic.Uint32
}

// register increments the counter and records id as the highest stream id
// seen if it is. Returns the new count (informational only; callers should
// not branch on it directly, per §5's "combine only on the event loop"
// rule).
func (s *streamAccounting) register(id uint32) int64 {
	for {
		cur := s.highID.Load()
		if id <= cur {
			break
		}
		if s.highID.CompareAndSwap(cur, id) {
			break
		}
	}
	return s.count.Add(1)
}

// highestStreamID returns the highest stream id registered so far, used as
// last_stream_id on the second GOAWAY (§6).
func (s *streamAccounting) highestStreamID() uint32 {
	return s.highID.Load()
}

// closed decrements the counter and reports whether this decrement observed
// zero. The invariant "never negative" is the caller's responsibility: it
// must call closed() at most once per register().
func (s *streamAccounting) closed() (newCount int64, reachedZero bool) {
	n := s.count.Add(-1)
	return n, n == 0
}

func (s *streamAccounting) load() int64 {
	return s.count.Load()
}
