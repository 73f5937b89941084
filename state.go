package h2keepalive

// slotKind enumerates the runtime variants a state slot can hold. Rather
// than reimplementing the source's dynamically-typed slot (nil, an enum
// constant, a timer handle, or another enum constant, all in one field), each
// slot here is a closed Go sum type: a kind tag plus the one field that kind
// actually uses (timer). Pattern-match on kind at every transition site
// instead of on dynamic type.
type slotKind uint8

const (
	// slotIdle: no activity of this kind in progress.
	slotIdle slotKind = iota
	// slotStarted: graceful-close slot only. GOAWAY1 + PING written, timer
	// not yet installed (the brief provisional window).
	slotStarted
	// slotInFlight: a PING has been written; timer is the scheduled
	// ACK-timeout, or nil during the provisional pre-confirm window.
	slotInFlight
	// slotTimedOut: the ACK did not arrive; terminal for this cycle.
	slotTimedOut
	// slotSecondGoAwaySent: graceful-close slot only. GOAWAY2 written,
	// waiting for streams to drain.
	slotSecondGoAwaySent
	// slotClosed: the manager has terminated; no further transitions legal.
	slotClosed
)

func (k slotKind) String() string {
	switch k {
	case slotIdle:
		return "Idle"
	case slotStarted:
		return "Started"
	case slotInFlight:
		return "InFlight"
	case slotTimedOut:
		return "TimedOut"
	case slotSecondGoAwaySent:
		return "SecondGoAwaySent"
	case slotClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// slot is the value held by one of the two state slots (keepAlive,
// gracefulClose). It is a plain value type; the owning FSM is solely
// responsible for only ever reading/writing it from the dispatcher
// goroutine (see dispatch.go), so no synchronization is needed here.
type slot struct {
	kind  slotKind
	timer TimerHandle // only meaningful when kind == slotInFlight
}

func idleSlot() slot { return slot{kind: slotIdle} }

// cancelTimer implements the "cancel if timer" helper from §4.2: tolerant of
// a nil handle (the provisional InFlight{timer=nil} window) and of the
// collaborator's Cancel panicking or reporting failure, in which case the
// caller-supplied logger records it at DEBUG but nothing is surfaced.
func (s slot) cancelTimer(log Logger) {
	if s.timer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Log(Event{Level: LevelDebug, Message: "timer cancel panicked", Fields: map[string]any{"recover": r}})
		}
	}()
	if !s.timer.Cancel() {
		log.Log(Event{Level: LevelDebug, Message: "timer cancel reported failure"})
	}
}
