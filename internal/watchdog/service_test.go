package watchdog

import (
	"testing"
	"time"
)

func TestCheckStaysAliveWhilePending(t *testing.T) {
	fired := false
	svc := NewService(Config{Interval: time.Second, IdleTimeout: 10 * time.Second},
		func() bool { return true },
		func() { fired = true },
	)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.lastActive = base.Add(-time.Hour)

	if svc.check() {
		t.Fatal("check fired despite pending work")
	}
	if fired {
		t.Fatal("shutdown invoked despite pending work")
	}
	if !svc.lastActive.Equal(base) {
		t.Fatal("expected lastActive refreshed while pending")
	}
}

func TestCheckFiresAfterIdleTimeout(t *testing.T) {
	fired := false
	svc := NewService(Config{Interval: time.Second, IdleTimeout: 10 * time.Second},
		func() bool { return false },
		func() { fired = true },
	)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.lastActive = base

	// Still within the idle window.
	svc.now = func() time.Time { return base.Add(9 * time.Second) }
	if svc.check() || fired {
		t.Fatal("check fired before idle timeout elapsed")
	}

	// Past the idle window.
	svc.now = func() time.Time { return base.Add(11 * time.Second) }
	if !svc.check() {
		t.Fatal("check did not fire after idle timeout")
	}
	if !fired {
		t.Fatal("shutdown not invoked")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	svc := NewService(Config{Interval: time.Hour, IdleTimeout: time.Hour},
		func() bool { return false },
		func() {},
	)

	svc.Start()
	svc.Start() // second Start is a no-op
	svc.Stop()
	svc.Stop() // second Stop is a no-op
}

func TestIdleWindowRestartsAfterNewWork(t *testing.T) {
	pending := false
	svc := NewService(Config{Interval: time.Second, IdleTimeout: 10 * time.Second},
		func() bool { return pending },
		func() {},
	)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.lastActive = base

	// New work arrives just before the deadline; the window restarts.
	pending = true
	svc.now = func() time.Time { return base.Add(9 * time.Second) }
	if svc.check() {
		t.Fatal("check fired while work was pending")
	}

	pending = false
	svc.now = func() time.Time { return base.Add(15 * time.Second) }
	if svc.check() {
		t.Fatal("check fired before the restarted window elapsed")
	}
}
