package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/notify"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewHistory
	viewPreferences
)

var viewNames = []string{"Timer", "History", "Preferences"}

// --- Messages ---

// engineEventMsg carries one engine update into the program.
type engineEventMsg engine.Event

// AlertMsg is sent by the notification deliverer when an alert fires.
type AlertMsg notify.Notification

type bannerExpiredMsg struct {
	at time.Time
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type preferencesSavedMsg struct{}

// --- Helpers ---

// formatClock renders whole seconds as MM:SS, or H:MM:SS past an hour.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatMinutes(mins int64) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}
