package engine

import (
	"errors"

	"github.com/sadopc/fillr/internal/store"
)

// RestoreIfNeeded resumes a run that was in flight when the process last
// exited. It only acts while idle and reports whether a run was resumed.
// Absent, unreadable or expired snapshots are deleted. Alerts are never
// rescheduled: the originals are still pending with the notifier.
func (e *Engine) RestoreIfNeeded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.phase != PhaseIdle {
		return false
	}

	snap, err := e.snapshots.LoadSnapshot()
	if err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			e.logger.Warn("discarding active run snapshot", "err", err)
		}
		e.clearSnapshotLocked()
		return false
	}

	now := e.clock.Now()
	end, duration := snap.EndAt, snap.Duration
	phase := PhaseFocus
	if snap.Phase == store.SnapshotBreak {
		phase = PhaseBreak
		if !snap.BreakEndAt.IsZero() && snap.BreakDuration > 0 {
			end, duration = snap.BreakEndAt, snap.BreakDuration
		}
	}
	start := end.Add(-duration)

	if duration <= 0 || !end.After(now) || start.After(now) {
		e.logger.Info("active run snapshot expired", "phase", snap.Phase, "end", end)
		e.clearSnapshotLocked()
		return false
	}

	e.colorHue = snap.ColorHue
	if phase == PhaseFocus {
		e.selected = e.clampIndex(snap.SelectedIndex)
	}
	r := &run{start: start, end: end, duration: duration}
	if phase == PhaseFocus {
		r.minutes = e.presets[e.selected]
		r.breaks = e.settings.BreaksEnabled
	}
	e.run = r

	e.startTask.stop()
	e.enterRunLocked(phase)
	e.tickLocked(now)
	e.logger.Info("active run restored", "phase", phase, "remaining", e.remaining)
	return true
}
