package h2keepalive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotKind_String(t *testing.T) {
	cases := map[slotKind]string{
		slotIdle:             "Idle",
		slotStarted:          "Started",
		slotInFlight:         "InFlight",
		slotTimedOut:         "TimedOut",
		slotSecondGoAwaySent: "SecondGoAwaySent",
		slotClosed:           "Closed",
		slotKind(255):        "Unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestIdleSlot(t *testing.T) {
	s := idleSlot()
	assert.Equal(t, slotIdle, s.kind)
	assert.Nil(t, s.timer)
}

func TestSlot_CancelTimer_NilHandleIsNoOp(t *testing.T) {
	s := slot{kind: slotInFlight, timer: nil}
	assert.NotPanics(t, func() { s.cancelTimer(NewNoOpLogger()) })
}

func TestSlot_CancelTimer_CallsCancel(t *testing.T) {
	timer := &fakeTimer{}
	s := slot{kind: slotInFlight, timer: timer}
	s.cancelTimer(NewNoOpLogger())
	assert.True(t, timer.cancelled)
}

type panicyTimer struct{}

func (panicyTimer) Cancel() bool { panic("cancel exploded") }

func TestSlot_CancelTimer_RecoversFromPanic(t *testing.T) {
	s := slot{kind: slotInFlight, timer: panicyTimer{}}
	assert.NotPanics(t, func() { s.cancelTimer(NewNoOpLogger()) })
}
