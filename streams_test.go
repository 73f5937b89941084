package h2keepalive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamAccounting_RegisterTracksCountAndHighWaterMark(t *testing.T) {
	var s streamAccounting

	assert.EqualValues(t, 1, s.register(5))
	assert.EqualValues(t, 2, s.register(3))
	assert.EqualValues(t, 3, s.register(9))

	assert.EqualValues(t, 3, s.load())
	assert.EqualValues(t, 9, s.highestStreamID())
}

func TestStreamAccounting_HighWaterMarkNeverDecreases(t *testing.T) {
	var s streamAccounting
	s.register(100)
	s.register(1)
	assert.EqualValues(t, 100, s.highestStreamID())
}

func TestStreamAccounting_ClosedReportsZeroCrossing(t *testing.T) {
	var s streamAccounting
	s.register(1)
	s.register(2)

	n, reachedZero := s.closed()
	assert.EqualValues(t, 1, n)
	assert.False(t, reachedZero)

	n, reachedZero = s.closed()
	assert.EqualValues(t, 0, n)
	assert.True(t, reachedZero)
}
