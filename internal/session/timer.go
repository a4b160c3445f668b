package session

import (
	"sync"
	"time"

	"github.com/pranavlonari/interview-assistant/internal/model"
)

const (
	defaultTick = time.Second
	// defaultDebounce is the grace window after the countdown reaches zero
	// in which a manual submission still wins over the auto-submit.
	defaultDebounce = 100 * time.Millisecond
	minWarnSeconds  = 10
)

// Timer is a per-question countdown. It decrements once per tick, flips a
// warning flag when a quarter of the budget remains, and fires onExpire
// exactly once when the countdown hits zero. Pausing stops the tick loop
// without losing the remaining time.
type Timer struct {
	mu       sync.Mutex
	total    int
	left     int
	running  bool
	warned   bool
	expired  bool
	canceled bool
	stop     chan struct{}

	tick     time.Duration
	debounce time.Duration

	onWarning func()
	onExpire  func()
}

// NewTimer creates a stopped timer with a budget of totalSeconds. Either
// callback may be nil. Callbacks run outside the timer's lock.
func NewTimer(totalSeconds int, onWarning, onExpire func()) *Timer {
	return &Timer{
		total:     totalSeconds,
		left:      totalSeconds,
		tick:      defaultTick,
		debounce:  defaultDebounce,
		onWarning: onWarning,
		onExpire:  onExpire,
	}
}

// SetInterval overrides the tick and debounce durations. Call before Start.
func (t *Timer) SetInterval(tick, debounce time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick = tick
	t.debounce = debounce
}

// Start begins (or resumes) the countdown. Starting an expired or
// canceled timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.expired || t.canceled || t.left <= 0 {
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	go t.run(t.stop)
}

// Pause stops the countdown, keeping the remaining time.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
	t.stop = nil
}

// Cancel stops the timer permanently. A pending expiry in its debounce
// window is suppressed.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.canceled = true
	if t.running {
		t.running = false
		close(t.stop)
		t.stop = nil
	}
}

// TimeSpent returns the seconds consumed so far.
func (t *Timer) TimeSpent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - t.left
}

// Snapshot returns the timer's current read-only state.
func (t *Timer) Snapshot() model.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return model.TimerState{
		TimeLeft:  t.left,
		TotalTime: t.total,
		IsRunning: t.running,
		Warning:   t.warned && t.left > 0,
	}
}

func (t *Timer) warnThreshold() int {
	w := t.total / 4
	if w < minWarnSeconds {
		w = minWarnSeconds
	}
	return w
}

func (t *Timer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			warn, expire := t.advance()
			if warn && t.onWarning != nil {
				t.onWarning()
			}
			if expire {
				t.fireExpiry()
				return
			}
		}
	}
}

func (t *Timer) advance() (warn, expire bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false, false
	}
	t.left--
	if t.left <= 0 {
		t.left = 0
		t.running = false
		t.stop = nil
		return t.maybeWarnLocked(), true
	}
	return t.maybeWarnLocked(), false
}

func (t *Timer) maybeWarnLocked() bool {
	if t.warned || t.left <= 0 || t.left > t.warnThreshold() {
		return false
	}
	t.warned = true
	return true
}

// fireExpiry waits out the debounce window, then fires onExpire unless
// the timer was canceled in the meantime.
func (t *Timer) fireExpiry() {
	time.Sleep(t.debounce)
	t.mu.Lock()
	if t.canceled || t.expired {
		t.mu.Unlock()
		return
	}
	t.expired = true
	t.mu.Unlock()
	if t.onExpire != nil {
		t.onExpire()
	}
}
