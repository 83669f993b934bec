package engine

import "time"

// Phase is the engine's top-level mode. Exactly one is active at a time.
//
// Earlier designs had a fifth, display-only "ended" phase. It is folded into
// PhaseIdle and intentionally not represented.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseFocus
	PhaseBreak
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountdown:
		return "countdown"
	case PhaseFocus:
		return "focus"
	case PhaseBreak:
		return "break"
	}
	return "unknown"
}

// Running reports whether p has an active timed run.
func (p Phase) Running() bool {
	return p == PhaseFocus || p == PhaseBreak
}

// EventType defines the kind of engine update.
type EventType string

const (
	EventPhase        EventType = "phase"
	EventProgress     EventType = "progress"
	EventCountdown    EventType = "countdown"
	EventSelection    EventType = "selection"
	EventPendingStart EventType = "pending_start"
)

// State is the observable engine state.
type State struct {
	Phase           Phase
	Progress        float64 // 0..1
	Remaining       int     // whole seconds, rounded up
	Countdown       int     // 3, 2, 1, 0
	ColorHue        float64
	SelectedIndex   int
	SelectedMinutes int
	Presets         []int
	StartPending    bool
}

// Event carries the state right after a change.
type Event struct {
	Type  EventType
	State State
	At    time.Time
}
