package session

import (
	"testing"
	"time"
)

func TestTimerExpiresOnce(t *testing.T) {
	expired := make(chan struct{}, 4)
	tm := NewTimer(3, nil, func() { expired <- struct{}{} })
	tm.SetInterval(time.Millisecond, 2*time.Millisecond)
	tm.Start()

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never expired")
	}
	select {
	case <-expired:
		t.Fatal("expiry fired twice")
	case <-time.After(20 * time.Millisecond):
	}

	snap := tm.Snapshot()
	if snap.TimeLeft != 0 {
		t.Errorf("expected 0 time left, got %d", snap.TimeLeft)
	}
	if snap.IsRunning {
		t.Error("expected timer stopped after expiry")
	}
}

func TestTimerWarning(t *testing.T) {
	warned := make(chan struct{}, 1)
	tm := NewTimer(60, func() { warned <- struct{}{} }, nil)
	tm.SetInterval(time.Millisecond, time.Millisecond)
	tm.Start()
	defer tm.Cancel()

	select {
	case <-warned:
	case <-time.After(2 * time.Second):
		t.Fatal("warning never fired")
	}
	snap := tm.Snapshot()
	if snap.TimeLeft > 15 {
		t.Errorf("warning fired with %d seconds left, threshold is 15", snap.TimeLeft)
	}
	if !snap.Warning {
		t.Error("expected warning flag in snapshot")
	}
}

func TestTimerWarnThreshold(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{120, 30},
		{60, 15},
		{40, 10},
		{20, 10}, // floor
	}
	for _, tt := range tests {
		tm := NewTimer(tt.total, nil, nil)
		if got := tm.warnThreshold(); got != tt.want {
			t.Errorf("warnThreshold(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestTimerPauseKeepsRemaining(t *testing.T) {
	tm := NewTimer(1000, nil, nil)
	tm.SetInterval(time.Millisecond, time.Millisecond)
	tm.Start()
	time.Sleep(20 * time.Millisecond)
	tm.Pause()

	first := tm.Snapshot()
	if first.IsRunning {
		t.Fatal("expected paused timer")
	}
	if first.TimeLeft == 1000 {
		t.Fatal("expected some time consumed before pause")
	}
	time.Sleep(20 * time.Millisecond)
	second := tm.Snapshot()
	if second.TimeLeft != first.TimeLeft {
		t.Errorf("time kept running while paused: %d -> %d", first.TimeLeft, second.TimeLeft)
	}

	tm.Start()
	defer tm.Cancel()
	if !tm.Snapshot().IsRunning {
		t.Error("expected timer running after resume")
	}
}

func TestTimerCancelSuppressesPendingExpiry(t *testing.T) {
	expired := make(chan struct{}, 1)
	tm := NewTimer(2, nil, func() { expired <- struct{}{} })
	tm.SetInterval(time.Millisecond, 50*time.Millisecond)
	tm.Start()

	// Wait until the countdown hits zero, then cancel inside the
	// debounce window.
	deadline := time.Now().Add(time.Second)
	for tm.Snapshot().TimeLeft > 0 {
		if time.Now().After(deadline) {
			t.Fatal("countdown never reached zero")
		}
		time.Sleep(time.Millisecond)
	}
	tm.Cancel()

	select {
	case <-expired:
		t.Fatal("expiry fired despite cancel")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestTimerStartAfterExpiryIsNoop(t *testing.T) {
	expired := make(chan struct{}, 1)
	tm := NewTimer(1, nil, func() { expired <- struct{}{} })
	tm.SetInterval(time.Millisecond, time.Millisecond)
	tm.Start()
	<-expired

	tm.Start()
	if tm.Snapshot().IsRunning {
		t.Error("expected expired timer to stay stopped")
	}
}
