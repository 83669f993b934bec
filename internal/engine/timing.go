package engine

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Session colors share saturation and brightness; only the hue varies.
const (
	sessionSaturation = 0.65
	sessionBrightness = 0.85
)

// BreakMinutes returns the break length that follows a focus run of
// focusMinutes: five minutes per started 25-minute block.
func BreakMinutes(focusMinutes int) int {
	if focusMinutes <= 0 {
		return 0
	}
	return (focusMinutes + 24) / 25 * 5
}

// Progress computes fractional progress and whole seconds remaining for a
// run spanning [start, end] observed at now.
func Progress(now, start, end time.Time) (progress float64, remaining int) {
	total := end.Sub(start)
	elapsed := now.Sub(start)

	if total <= 0 {
		progress = 1
	} else {
		progress = math.Max(0, math.Min(1, float64(elapsed)/float64(total)))
	}

	remaining = int(math.Ceil(end.Sub(now).Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	return progress, remaining
}

// scaledDuration converts minutes to a duration, compressed by multiplier.
// Non-positive multipliers are treated as 1.
func scaledDuration(minutes int, multiplier float64) time.Duration {
	if multiplier <= 0 {
		multiplier = 1
	}
	return time.Duration(float64(minutes) * float64(time.Minute) * multiplier)
}

// SessionColor returns the fill color for hue in [0,1).
func SessionColor(hue float64) colorful.Color {
	return colorful.Hsv(hue*360, sessionSaturation, sessionBrightness)
}

// SessionHex returns SessionColor as a #rrggbb string.
func SessionHex(hue float64) string {
	return SessionColor(hue).Hex()
}
