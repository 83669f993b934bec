package config

// Speed compresses wall time for debugging: 2x halves every duration.
type Speed string

const (
	SpeedX1  Speed = "1x"
	SpeedX2  Speed = "2x"
	SpeedX5  Speed = "5x"
	SpeedX10 Speed = "10x"
)

// Speeds lists the selectable speeds in display order.
var Speeds = []Speed{SpeedX1, SpeedX2, SpeedX5, SpeedX10}

// Multiplier is the factor applied to real durations. Unknown speeds run at 1x.
func (s Speed) Multiplier() float64 {
	switch s {
	case SpeedX2:
		return 0.5
	case SpeedX5:
		return 0.2
	case SpeedX10:
		return 0.1
	default:
		return 1.0
	}
}

// EffectiveMultiplier returns the speed multiplier when acceleration is on
// and 1 otherwise.
func EffectiveMultiplier(accelerate bool, s Speed) float64 {
	if !accelerate {
		return 1.0
	}
	return s.Multiplier()
}
