package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleTimerFires(t *testing.T) {
	var fired atomic.Int32
	timer := NewIdleTimer(30*time.Millisecond, func() { fired.Add(1) })
	timer.Arm()

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Expired timers stay quiet until rearmed.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTouchRearms(t *testing.T) {
	var fired atomic.Int32
	timer := NewIdleTimer(80*time.Millisecond, func() { fired.Add(1) })
	timer.Arm()

	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		timer.Touch()
	}
	assert.Equal(t, int32(0), fired.Load(), "touches kept the session alive")

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSuspendBlocksExpiry(t *testing.T) {
	var fired atomic.Int32
	timer := NewIdleTimer(30*time.Millisecond, func() { fired.Add(1) })
	timer.Arm()
	timer.Suspend()

	time.Sleep(90 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "no expiry while a payment is in flight")

	timer.Resume()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNestedSuspends(t *testing.T) {
	var fired atomic.Int32
	timer := NewIdleTimer(30*time.Millisecond, func() { fired.Add(1) })
	timer.Arm()

	timer.Suspend()
	timer.Suspend()
	timer.Resume()
	time.Sleep(90 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "one resume is not enough")

	timer.Resume()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDisarm(t *testing.T) {
	var fired atomic.Int32
	timer := NewIdleTimer(30*time.Millisecond, func() { fired.Add(1) })
	timer.Arm()
	timer.Disarm()

	time.Sleep(90 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
