package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakMinutes(t *testing.T) {
	tests := []struct {
		focus, want int
	}{
		{10, 5},
		{25, 5},
		{26, 10},
		{50, 10},
		{60, 15},
		{90, 20},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BreakMinutes(tt.focus), "BreakMinutes(%d)", tt.focus)
	}
}

func TestProgress(t *testing.T) {
	start := epoch
	end := epoch.Add(600 * time.Second)

	tests := []struct {
		name          string
		now           time.Time
		wantProgress  float64
		wantRemaining int
	}{
		{"at start", start, 0, 600},
		{"before start", start.Add(-time.Minute), 0, 660},
		{"halfway", start.Add(300 * time.Second), 0.5, 300},
		{"rounds remaining up", start.Add(300*time.Second + 100*time.Millisecond), 300.1 / 600, 300},
		{"last partial second", end.Add(-time.Millisecond), float64(600*time.Second-time.Millisecond) / float64(600*time.Second), 1},
		{"at end", end, 1, 0},
		{"past end", end.Add(time.Hour), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, r := Progress(tt.now, start, end)
			assert.InDelta(t, tt.wantProgress, p, 1e-12)
			assert.Equal(t, tt.wantRemaining, r)
		})
	}
}

func TestProgressZeroLengthRun(t *testing.T) {
	p, r := Progress(epoch, epoch, epoch)
	assert.Equal(t, 1.0, p)
	assert.Zero(t, r)
}

func TestScaledDuration(t *testing.T) {
	assert.Equal(t, 25*time.Minute, scaledDuration(25, 1))
	assert.Equal(t, 150*time.Second, scaledDuration(25, 0.1))
	assert.Equal(t, 25*time.Minute, scaledDuration(25, 0))
}

func TestSessionColor(t *testing.T) {
	assert.Equal(t, "#d94c4c", SessionHex(0))
	h, s, v := SessionColor(0.5).Hsv()
	assert.InDelta(t, 180, h, 0.5)
	assert.InDelta(t, 0.65, s, 0.01)
	assert.InDelta(t, 0.85, v, 0.01)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "countdown", PhaseCountdown.String())
	assert.Equal(t, "focus", PhaseFocus.String())
	assert.Equal(t, "break", PhaseBreak.String())
	assert.Equal(t, "unknown", Phase(9).String())
	assert.True(t, PhaseFocus.Running())
	assert.True(t, PhaseBreak.Running())
	assert.False(t, PhaseCountdown.Running())
}
