package session

import "time"

// Scheduler arms one-shot timers that can be cancelled before they fire.
// Sessions never use bare timers: every delayed step (debounce, settlement,
// success dismissal) goes through a Scheduler so that supersession and
// teardown are explicit, and so tests can drive time by hand.
type Scheduler interface {
	// Schedule runs fn after d unless the returned cancel function is
	// called first. Cancel is best-effort: fn may already be running, so
	// callers must also guard against late firings themselves.
	Schedule(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on real wall-clock timers.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, fn)
	return func() {
		timer.Stop()
	}
}
