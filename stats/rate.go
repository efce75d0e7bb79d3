/*Package stats provides the rate counters and the jitter window shared by
the network-receive and DMX-send paths.

A Rate is a reset-on-read counter: every successful read reports the average
rate over the window since the previous read and starts a new window. The two
sides of the bridge use different read policies, see NewReceiveRate and
NewSendRate.*/
package stats

import (
	"sync"
	"time"
)

// Rate counts events and reports their frequency per second.
type Rate struct {
	mu          sync.Mutex
	count       uint64
	total       uint64
	windowStart time.Time
	last        float64

	//read policy
	minElapsed time.Duration
	minEvents  uint64
	keepLast   bool

	now func() time.Time
}

// NewReceiveRate returns a Rate with the network-side policy: a value is only
// computed once more than a second and more than 100 events have accumulated,
// to keep the reading steady, and the previously computed value is reported
// between windows.
func NewReceiveRate() *Rate {
	return &Rate{minElapsed: time.Second, minEvents: 100, keepLast: true, now: time.Now}
}

// NewSendRate returns a Rate with the DMX-side policy: any non-zero window
// with at least one event yields a value, and zero is reported between
// windows.
func NewSendRate() *Rate {
	return &Rate{now: time.Now}
}

// Record counts one event. The first event after a reset opens a new window.
func (r *Rate) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.windowStart.IsZero() {
		r.windowStart = r.now()
	}
	r.count++
	r.total++
}

// PerSecond returns the event rate over the current window and resets it.
// While the window is too young (or, on the receive side, too sparse) the
// previous value or zero is returned per the policy and nothing is reset.
func (r *Rate) PerSecond() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	idle := r.last
	if !r.keepLast {
		idle = 0
	}
	if r.windowStart.IsZero() {
		return idle
	}
	//elapsed time is held in whole milliseconds like the source of these
	//numbers, so a window younger than 1ms never divides by zero
	elapsedMs := r.now().Sub(r.windowStart).Milliseconds()
	if elapsedMs <= r.minElapsed.Milliseconds() || r.count <= r.minEvents {
		return idle
	}

	rate := 1000 * float64(r.count) / float64(elapsedMs)
	r.count = 0
	r.windowStart = r.now()
	r.last = rate
	return rate
}

// Total returns the cumulative event count. It is never reset.
func (r *Rate) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
