package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/notify"
)

const bannerTTL = 8 * time.Second

// timerModel renders engine state. All timing lives in the engine; the model
// only forwards keys and keeps the latest State.
type timerModel struct {
	engine *engine.Engine
	width  int
	height int

	state  engine.State
	banner *notify.Notification
}

func newTimerModel(e *engine.Engine) timerModel {
	return timerModel{
		engine: e,
		state:  e.State(),
	}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// running reports whether a focus or break run is on screen.
func (t timerModel) running() bool { return t.state.Phase.Running() }

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case engineEventMsg:
		t.state = msg.State
		return t, nil

	case AlertMsg:
		n := notify.Notification(msg)
		t.banner = &n
		at := n.At
		return t, tea.Tick(bannerTTL, func(time.Time) tea.Msg {
			return bannerExpiredMsg{at: at}
		})

	case bannerExpiredMsg:
		if t.banner != nil && t.banner.At.Equal(msg.at) {
			t.banner = nil
		}
		return t, nil

	case tea.KeyMsg:
		return t.handleKey(msg)
	}
	return t, nil
}

func (t timerModel) handleKey(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	t.banner = nil

	switch t.state.Phase {
	case engine.PhaseIdle:
		switch {
		case key.Matches(msg, keys.Left):
			t.engine.CancelPendingStart()
			t.engine.AdjustSelection(-1)
		case key.Matches(msg, keys.Right):
			t.engine.CancelPendingStart()
			t.engine.AdjustSelection(1)
		case key.Matches(msg, keys.Enter):
			t.engine.ScheduleStart()
		case key.Matches(msg, keys.Start):
			t.engine.Start()
		case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Back):
			t.engine.CancelPendingStart()
		}

	case engine.PhaseCountdown:
		// Any key aborts the countdown.
		t.engine.CancelCountdown()

	case engine.PhaseFocus:
		if key.Matches(msg, keys.Cancel) {
			t.engine.CancelFocus()
			t.state = t.engine.State()
			return t, func() tea.Msg { return statusMsg{text: "Focus cancelled"} }
		}

	case engine.PhaseBreak:
		if key.Matches(msg, keys.Skip) || key.Matches(msg, keys.Cancel) {
			t.engine.SkipBreak()
			t.state = t.engine.State()
			return t, func() tea.Msg { return statusMsg{text: "Break skipped"} }
		}
	}

	t.state = t.engine.State()
	return t, nil
}

func (t timerModel) view() string {
	w := max(t.width-4, 20)

	var body string
	switch t.state.Phase {
	case engine.PhaseIdle:
		body = t.viewIdle(w)
	case engine.PhaseCountdown:
		body = t.viewCountdown(w)
	default:
		body = t.viewRun(w)
	}

	if t.banner != nil {
		body = lipgloss.JoinVertical(lipgloss.Center, renderBanner(*t.banner, w-10), "", body)
	}
	return panelStyle.Width(w).Render(body)
}

func (t timerModel) viewIdle(w int) string {
	title := titleStyle.Render("Focus")

	var presets []string
	for i, m := range t.state.Presets {
		label := fmt.Sprintf(" %d ", m)
		if i == t.state.SelectedIndex {
			presets = append(presets, selectedItemStyle.Render("["+label+"]"))
		} else {
			presets = append(presets, normalItemStyle.Render(" "+label+" "))
		}
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Center, presets...)

	clock := timerStyle.Width(w - 6).Render(formatClock(t.state.SelectedMinutes * 60))
	breakInfo := mutedStyle.Render(fmt.Sprintf("then a %d-minute break", engine.BreakMinutes(t.state.SelectedMinutes)))

	hint := mutedStyle.Render("←/→: choose  enter: start  s: start now")
	if t.state.StartPending {
		hint = warningStyle.Render("Starting…  (x to cancel)")
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		title, "", selector, "", clock, breakInfo, "", hint,
	)
}

func (t timerModel) viewCountdown(w int) string {
	digit := countdownStyle.Width(w - 6).Render(fmt.Sprintf("%d", t.state.Countdown))
	if t.state.Countdown == 0 {
		digit = countdownStyle.Width(w - 6).Render("Go")
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(fmt.Sprintf("%d minutes", t.state.SelectedMinutes)),
		"",
		digit,
		"",
		mutedStyle.Render("press any key to cancel"),
	)
}

func (t timerModel) viewRun(w int) string {
	hex := engine.SessionHex(t.state.ColorHue)
	color := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(true)

	label := "FOCUS"
	controls := "x: cancel"
	if t.state.Phase == engine.PhaseBreak {
		label = "BREAK"
		controls = "space: skip break"
	}

	remaining := color.Width(w - 6).Align(lipgloss.Center).Render(formatClock(t.state.Remaining))
	pct := mutedStyle.Render(fmt.Sprintf("%3.0f%%", t.state.Progress*100))

	fillHeight := max(t.height-14, 3)
	fill := renderFill(w-6, fillHeight, t.state.Progress, hex)

	return lipgloss.JoinVertical(lipgloss.Center,
		color.Render(label),
		"",
		remaining,
		pct,
		"",
		fill,
		"",
		mutedStyle.Render(controls),
	)
}

// renderFill draws a block that fills from the bottom as progress goes
// from 0 to 1.
func renderFill(width, height int, progress float64, hex string) string {
	if width < 1 || height < 1 {
		return ""
	}
	progress = math.Min(math.Max(progress, 0), 1)
	filled := int(math.Round(progress * float64(height)))

	blank := strings.Repeat(" ", width)
	emptyRow := lipgloss.NewStyle().Background(colorSubtle).Render(blank)
	fullRow := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(blank)

	rows := make([]string, 0, height)
	for i := 0; i < height; i++ {
		if i < height-filled {
			rows = append(rows, emptyRow)
		} else {
			rows = append(rows, fullRow)
		}
	}
	return strings.Join(rows, "\n")
}

func renderBanner(n notify.Notification, width int) string {
	title := warningStyle.Bold(true).Render(n.Title)
	return bannerStyle.Width(max(width, 10)).Render(lipgloss.JoinVertical(lipgloss.Left, title, n.Body))
}
