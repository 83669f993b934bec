// Package clock supplies the repeating and one-shot timing primitives the
// phase engine runs on. Real is wall-clock backed; Fake is advanced by hand
// in tests.
package clock

import (
	"sync"
	"time"
)

// Handle is a scheduled task that can be stopped.
// Stop is idempotent and reports whether the task was still pending.
type Handle interface {
	Stop() bool
}

// Clock tells time and schedules callbacks.
type Clock interface {
	Now() time.Time
	// Every calls fn every d until the returned handle is stopped.
	Every(d time.Duration, fn func()) Handle
	// After calls fn once after d unless the handle is stopped first.
	After(d time.Duration, fn func()) Handle
}

// Real is a Clock backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Every(d time.Duration, fn func()) Handle {
	h := &tickerHandle{
		ticker: time.NewTicker(d),
		stopCh: make(chan struct{}),
	}
	go h.run(fn)
	return h
}

func (Real) After(d time.Duration, fn func()) Handle {
	return timerHandle{timer: time.AfterFunc(d, fn)}
}

type tickerHandle struct {
	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once
}

func (h *tickerHandle) run(fn func()) {
	for {
		select {
		case <-h.stopCh:
			return
		case <-h.ticker.C:
			// a tick can race with Stop; prefer the stop signal
			select {
			case <-h.stopCh:
				return
			default:
			}
			fn()
		}
	}
}

func (h *tickerHandle) Stop() bool {
	stopped := false
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.stopCh)
		stopped = true
	})
	return stopped
}

type timerHandle struct {
	timer *time.Timer
}

func (h timerHandle) Stop() bool {
	return h.timer.Stop()
}
