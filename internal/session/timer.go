// Package session holds the kiosk's inactivity timer. Any customer touch
// rearms it; expiry abandons the order and returns the kiosk to attract
// mode. The timer suspends while a payment is in flight so an idle reset
// can never abort an active terminal operation.
package session

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout is how long a session may sit untouched.
const DefaultTimeout = 2 * time.Minute

// IdleTimer fires a callback after a period without Touch calls. It
// implements the Suspend/Resume pair the payment machine expects.
type IdleTimer struct {
	timeout time.Duration
	expire  func()

	mu        sync.Mutex
	timer     *time.Timer
	suspended int
	armed     bool
}

// NewIdleTimer builds a stopped timer; call Arm to start it.
func NewIdleTimer(timeout time.Duration, expire func()) *IdleTimer {
	return &IdleTimer{timeout: timeout, expire: expire}
}

// Arm starts (or restarts) the countdown.
func (t *IdleTimer) Arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.resetLocked()
}

// Disarm stops the countdown entirely, for attract mode where there is no
// session to expire.
func (t *IdleTimer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	t.stopLocked()
}

// Touch rearms the countdown; call it on every customer interaction.
func (t *IdleTimer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed || t.suspended > 0 {
		return
	}
	t.resetLocked()
}

// Suspend pauses expiry. Calls nest; the countdown only restarts once every
// Suspend has a matching Resume.
func (t *IdleTimer) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended++
	t.stopLocked()
}

// Resume undoes one Suspend, restarting the countdown when the last
// suspension lifts.
func (t *IdleTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.suspended == 0 {
		return
	}
	t.suspended--
	if t.suspended == 0 && t.armed {
		t.resetLocked()
	}
}

func (t *IdleTimer) resetLocked() {
	t.stopLocked()
	t.timer = time.AfterFunc(t.timeout, t.fire)
}

func (t *IdleTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *IdleTimer) fire() {
	t.mu.Lock()
	if !t.armed || t.suspended > 0 {
		t.mu.Unlock()
		return
	}
	t.armed = false
	t.timer = nil
	t.mu.Unlock()

	slog.Info("Session expired from inactivity")
	t.expire()
}
