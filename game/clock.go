package game

import (
	"sync"
	"time"
)

// Clock is the timer collaborator the scheduler runs on.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	NewTimer(d time.Duration) Timer
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Timer interface {
	C() <-chan time.Time
	// Reset re-arms the timer to fire d from now.
	Reset(d time.Duration)
	Stop()
}

// RealClock provides the system time and package time timers.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

func (RealClock) NewTimer(d time.Duration) Timer {
	return realTimer{time.NewTimer(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time   { return r.t.C }
func (r realTimer) Reset(d time.Duration) { r.t.Reset(d) }
func (r realTimer) Stop()                 { r.t.Stop() }

// ManualClock is a controllable clock for tests. Time only moves on
// Advance, which delivers every tick and timer fire that falls inside
// the advanced window in chronological order. Channels are unbuffered,
// so each delivery waits for the receiver.
type ManualClock struct {
	mu        sync.Mutex
	now       time.Time
	seq       uint64
	waiters   []*manualWaiter
	afterFire func()
}

// NewManualClock creates a new manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) NewTicker(d time.Duration) Ticker {
	return m.add(d, d)
}

func (m *ManualClock) NewTimer(d time.Duration) Timer {
	return m.add(d, 0)
}

func (m *ManualClock) add(d, period time.Duration) *manualWaiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	w := &manualWaiter{
		clock:    m,
		c:        make(chan time.Time),
		deadline: m.now.Add(d),
		period:   period,
		active:   true,
		seq:      m.seq,
	}
	m.waiters = append(m.waiters, w)
	return w
}

// AfterFire registers fn to run after every delivery, before time moves
// on. Tests use it to wait until the receiver has handled the fire.
func (m *ManualClock) AfterFire(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterFire = fn
}

// Advance moves time forward by d, firing due waiters on the way.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *manualWaiter
		for _, w := range m.waiters {
			if !w.active || w.deadline.After(target) {
				continue
			}
			if next == nil || w.deadline.Before(next.deadline) ||
				(w.deadline.Equal(next.deadline) && w.seq < next.seq) {
				next = w
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}

		m.now = next.deadline
		fired := m.now
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			next.active = false
		}
		hook := m.afterFire
		m.mu.Unlock()

		next.c <- fired
		if hook != nil {
			hook()
		}
	}
}

// Pending returns how many tickers and timers are still armed.
func (m *ManualClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.waiters {
		if w.active {
			n++
		}
	}
	return n
}

type manualWaiter struct {
	clock    *ManualClock
	c        chan time.Time
	deadline time.Time
	period   time.Duration
	active   bool
	seq      uint64
}

func (w *manualWaiter) C() <-chan time.Time { return w.c }

func (w *manualWaiter) Stop() {
	w.clock.mu.Lock()
	defer w.clock.mu.Unlock()
	w.active = false
}

func (w *manualWaiter) Reset(d time.Duration) {
	w.clock.mu.Lock()
	defer w.clock.mu.Unlock()
	w.deadline = w.clock.now.Add(d)
	w.active = true
}
