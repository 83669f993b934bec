package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/fillr/internal/store"
)

// Scenario C: a focus run with 120s left out of 600s resumes at 80%.
func TestRestoreFocus(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSnapshot(store.Snapshot{
		Phase:         store.SnapshotFocus,
		EndAt:         epoch.Add(120 * time.Second),
		Duration:      600 * time.Second,
		ColorHue:      0.7,
		SelectedIndex: 0,
	}))
	h := newHarnessWithStore(t, s)

	require.True(t, h.engine.RestoreIfNeeded())
	st := h.engine.State()
	assert.Equal(t, PhaseFocus, st.Phase)
	assert.InDelta(t, 0.8, st.Progress, 1e-9)
	assert.Equal(t, 120, st.Remaining)
	assert.Equal(t, 0.7, st.ColorHue)
	assert.Equal(t, 0, st.SelectedIndex)
	assert.Empty(t, h.notifier.Calls(), "restoration never reschedules alerts")
	assert.Equal(t, 10, h.engine.run.minutes)

	// The resumed run completes on schedule and logs a full session.
	h.clock.Advance(120 * time.Second)
	assert.Equal(t, PhaseBreak, h.engine.State().Phase)
	sessions := h.sessions(t)
	require.Len(t, sessions, 1)
	assert.Equal(t, 10, sessions[0].DurationMinutes)
	assert.True(t, sessions[0].StartTime.Equal(epoch.Add(-480*time.Second)))
	assert.Equal(t, 5, h.engine.State().Remaining/60)
}

func TestRestoreBreak(t *testing.T) {
	s := newTestStore(t)
	end := epoch.Add(60 * time.Second)
	require.NoError(t, s.SaveSnapshot(store.Snapshot{
		Phase:         store.SnapshotBreak,
		EndAt:         end,
		Duration:      300 * time.Second,
		ColorHue:      0.1,
		SelectedIndex: 2,
		BreakEndAt:    end,
		BreakDuration: 300 * time.Second,
	}))
	h := newHarnessWithStore(t, s)

	require.True(t, h.engine.RestoreIfNeeded())
	st := h.engine.State()
	assert.Equal(t, PhaseBreak, st.Phase)
	assert.InDelta(t, 0.8, st.Progress, 1e-9)
	assert.Equal(t, 60, st.Remaining)
	assert.Equal(t, 1, st.SelectedIndex, "selection is only restored for focus runs")
	assert.Zero(t, h.engine.run.minutes, "a restored break carries no preset length")

	h.clock.Advance(60 * time.Second)
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
	h.snapshotAbsent(t)
	assert.Empty(t, h.sessions(t))
}

// Scenario D: an expired snapshot is discarded.
func TestRestoreExpired(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSnapshot(store.Snapshot{
		Phase:    store.SnapshotFocus,
		EndAt:    epoch.Add(-time.Second),
		Duration: 600 * time.Second,
	}))
	h := newHarnessWithStore(t, s)

	assert.False(t, h.engine.RestoreIfNeeded())
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
	h.snapshotAbsent(t)
}

func TestRestoreEndingExactlyNowIsExpired(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSnapshot(store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch, Duration: time.Minute}))
	h := newHarnessWithStore(t, s)
	assert.False(t, h.engine.RestoreIfNeeded())
	h.snapshotAbsent(t)
}

func TestRestoreRejectsInvalidSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap store.Snapshot
		tamp func(*store.Store)
	}{
		{
			name: "zero duration",
			snap: store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch.Add(time.Minute)},
		},
		{
			name: "start in the future",
			snap: store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch.Add(time.Hour), Duration: time.Minute},
		},
		{
			name: "malformed value",
			snap: store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch.Add(time.Minute), Duration: time.Hour},
			tamp: func(s *store.Store) { _ = s.SetSetting(store.KeyActiveEndDate, "soon") },
		},
		{
			name: "NaN hue",
			snap: store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch.Add(time.Minute), Duration: time.Hour},
			tamp: func(s *store.Store) { _ = s.SetSetting(store.KeyActiveColorHue, "NaN") },
		},
		{
			name: "hue out of range",
			snap: store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch.Add(time.Minute), Duration: time.Hour},
			tamp: func(s *store.Store) { _ = s.SetSetting(store.KeyActiveColorHue, "1.5") },
		},
		{
			name: "missing key",
			snap: store.Snapshot{Phase: store.SnapshotFocus, EndAt: epoch.Add(time.Minute), Duration: time.Hour},
			tamp: func(s *store.Store) { _ = s.DeleteSettings(store.KeyActiveDurationSeconds) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, s.SaveSnapshot(tt.snap))
			if tt.tamp != nil {
				tt.tamp(s)
			}
			h := newHarnessWithStore(t, s)

			assert.False(t, h.engine.RestoreIfNeeded())
			assert.Equal(t, PhaseIdle, h.engine.State().Phase)
			h.snapshotAbsent(t)
		})
	}
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.engine.RestoreIfNeeded())
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
}

func TestRestoreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSnapshot(store.Snapshot{
		Phase:    store.SnapshotFocus,
		EndAt:    epoch.Add(120 * time.Second),
		Duration: 600 * time.Second,
		ColorHue: 0.4,
	}))
	h := newHarnessWithStore(t, s)

	require.True(t, h.engine.RestoreIfNeeded())
	first := h.engine.State()
	assert.False(t, h.engine.RestoreIfNeeded(), "only restores from idle")
	assert.Equal(t, first, h.engine.State())

	// A second process restoring the same snapshot sees the same state.
	other := newHarnessWithStore(t, s)
	require.True(t, other.engine.RestoreIfNeeded())
	assert.Equal(t, first, other.engine.State())
}

func TestRestoreClampsSelectedIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSnapshot(store.Snapshot{
		Phase:         store.SnapshotFocus,
		EndAt:         epoch.Add(time.Minute),
		Duration:      90 * time.Minute,
		SelectedIndex: 12,
	}))
	h := newHarnessWithStore(t, s)
	require.True(t, h.engine.RestoreIfNeeded())
	assert.Equal(t, 3, h.engine.State().SelectedIndex)
}

// After any cancel, a simulated restart comes back idle.
func TestCancelThenRestartRestoresIdle(t *testing.T) {
	cancels := map[string]func(h *harness){
		"cancel focus": func(h *harness) { h.engine.CancelFocus() },
		"skip break": func(h *harness) {
			h.clock.Advance(25 * time.Minute)
			h.engine.SkipBreak()
		},
		"terminate": func(h *harness) { h.engine.HandleTerminating() },
	}
	for name, cancel := range cancels {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			h := newHarnessWithStore(t, s)
			h.startFocus(t)
			cancel(h)

			restarted := newHarnessWithStore(t, s)
			assert.False(t, restarted.engine.RestoreIfNeeded())
			assert.Equal(t, PhaseIdle, restarted.engine.State().Phase)
		})
	}
}

func TestRunSurvivesRestart(t *testing.T) {
	s := newTestStore(t)
	h := newHarnessWithStore(t, s)
	h.startFocus(t)
	h.clock.Advance(5 * time.Minute)

	// Simulate process death: a new engine on the same store, later clock.
	restarted := newHarnessWithStore(t, s)
	restarted.clock.Set(h.clock.Now())
	require.True(t, restarted.engine.RestoreIfNeeded())
	st := restarted.engine.State()
	assert.Equal(t, PhaseFocus, st.Phase)
	assert.Equal(t, 1200, st.Remaining)
	assert.InDelta(t, 0.2, st.Progress, 1e-9)
	assert.Equal(t, h.engine.State().ColorHue, st.ColorHue)
}
