package store

import "time"

// Session is one focus run recorded in the session log.
type Session struct {
	ID              int64
	UUID            string
	StartTime       time.Time
	DurationMinutes int
	Completed       bool
	ColorHue        float64
	CreatedAt       time.Time
}

type Setting struct {
	Key   string
	Value string
}

// Preferences are the user toggles edited from the preferences view.
type Preferences struct {
	BreaksEnabled bool
	BreakQuotes   bool
	Notifications bool
	Accelerate    bool
	Speed         string // 1x, 2x, 5x, 10x
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	From          *time.Time
	To            *time.Time
	CompletedOnly bool
	Limit         int
}

// DailyFocus represents aggregated focus minutes per day.
type DailyFocus struct {
	Date     string
	Minutes  int64
	Sessions int
}

// Snapshot phases.
const (
	SnapshotFocus = "focus"
	SnapshotBreak = "break"
)

// Snapshot is the durable record of an in-flight focus or break run.
// Durations are post-scaling.
type Snapshot struct {
	Phase         string
	EndAt         time.Time
	Duration      time.Duration
	ColorHue      float64
	SelectedIndex int
	BreakEndAt    time.Time
	BreakDuration time.Duration
}

// PendingNotification is an alert scheduled but not yet delivered.
type PendingNotification struct {
	Key   string
	Title string
	Body  string
	DueAt time.Time
}
