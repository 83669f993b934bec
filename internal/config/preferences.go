package config

import (
	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/store"
)

// RunSettings converts the stored user toggles into the settings the engine
// reads when it creates a run.
func RunSettings(p store.Preferences) engine.Settings {
	return engine.Settings{
		BreaksEnabled: p.BreaksEnabled,
		BreakQuotes:   p.BreakQuotes,
		Multiplier:    EffectiveMultiplier(p.Accelerate, Speed(p.Speed)),
	}
}
