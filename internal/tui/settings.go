package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fillr/internal/config"
	"github.com/sadopc/fillr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	prefs      store.Preferences
	formActive bool
	form       *huh.Form

	// applied after a successful save
	onSave func(store.Preferences)

	// Form values as pointers (survive value copies)
	breaksEnabled *bool
	breakQuotes   *bool
	notifications *bool
	accelerate    *bool
	speed         *string
}

func newSettingsModel(s *store.Store, onSave func(store.Preferences)) settingsModel {
	var be, bq, n, a bool
	sp := string(config.SpeedX1)
	return settingsModel{
		store:         s,
		prefs:         store.DefaultPreferences(),
		onSave:        onSave,
		breaksEnabled: &be,
		breakQuotes:   &bq,
		notifications: &n,
		accelerate:    &a,
		speed:         &sp,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	prefs store.Preferences
	err   error
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		p, err := s.store.LoadPreferences()
		return settingsDataMsg{prefs: p, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.prefs = msg.prefs
		if msg.err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Preferences: %v", msg.err), isError: true}
			}
		}
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.breaksEnabled = s.prefs.BreaksEnabled
	*s.breakQuotes = s.prefs.BreakQuotes
	*s.notifications = s.prefs.Notifications
	*s.accelerate = s.prefs.Accelerate
	*s.speed = s.prefs.Speed

	speeds := make([]huh.Option[string], 0, len(config.Speeds))
	for _, sp := range config.Speeds {
		speeds = append(speeds, huh.NewOption(string(sp), string(sp)))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Take a break after each focus session?").Value(s.breaksEnabled),
			huh.NewConfirm().Title("Show a quote when the break ends?").Value(s.breakQuotes),
			huh.NewConfirm().Title("Alerts").Affirmative("On").Negative("Off").Value(s.notifications),
		).Title("Sessions"),
		huh.NewGroup(
			huh.NewConfirm().Title("Accelerate time").Affirmative("On").Negative("Off").Value(s.accelerate),
			huh.NewSelect[string]().Title("Speed").Options(speeds...).Value(s.speed),
		).Title("Debug"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		return s.save()
	}

	return s, cmd
}

func (s settingsModel) formValues() store.Preferences {
	return store.Preferences{
		BreaksEnabled: *s.breaksEnabled,
		BreakQuotes:   *s.breakQuotes,
		Notifications: *s.notifications,
		Accelerate:    *s.accelerate,
		Speed:         *s.speed,
	}
}

func (s settingsModel) save() (settingsModel, tea.Cmd) {
	s.formActive = false
	p := s.formValues()
	if err := s.store.SavePreferences(p); err != nil {
		return s, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Save failed: %v", err), isError: true}
		}
	}
	s.prefs = p
	if s.onSave != nil {
		s.onSave(p)
	}
	return s, func() tea.Msg { return preferencesSavedMsg{} }
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Preferences")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	speed := s.prefs.Speed
	if !s.prefs.Accelerate {
		speed = "off"
	}
	rows := []string{
		title,
		"",
		settingRow("Breaks", onOff(s.prefs.BreaksEnabled)),
		settingRow("Break quotes", onOff(s.prefs.BreakQuotes)),
		settingRow("Alerts", onOff(s.prefs.Notifications)),
		settingRow("Acceleration", speed),
		"",
		mutedStyle.Render("Press enter to edit. Changes apply from the next session."),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(label), highlightStyle.Render(value))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
