package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fillr/internal/clock"
	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/logging"
	"github.com/sadopc/fillr/internal/notify"
	"github.com/sadopc/fillr/internal/store"
)

var epoch = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type fixture struct {
	store  *store.Store
	clock  *clock.Fake
	engine *engine.Engine
	center *notify.Center
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newTestStore(t)
	clk := clock.NewFake(epoch)
	center := notify.New(clk, notify.Options{Allow: true, Store: s, Logger: logging.Discard()})
	e, err := engine.New(clk, center, s, engine.Options{
		Presets:       []int{10, 25, 60, 90},
		SelectedIndex: 1,
		TickInterval:  time.Second,
		StartDelay:    time.Second,
		Settings:      engine.Settings{BreaksEnabled: true, Multiplier: 1},
		Logger:        logging.Discard(),
		Hue:           func() float64 { return 0.3 },
	})
	if err != nil {
		t.Fatal(err)
	}
	e.AttachSessionLog(s)
	t.Cleanup(e.Close)
	return &fixture{store: s, clock: clk, engine: e, center: center}
}

func (f *fixture) app() App {
	a := NewApp(f.store, f.engine, nil)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func containsString(s, sub string) bool {
	return strings.Contains(s, sub)
}

// ============================================================
// Timer view
// ============================================================

func TestTimerSelection(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyRight})
	if tm.state.SelectedIndex != 2 || tm.state.SelectedMinutes != 60 {
		t.Fatalf("selection = %d (%d min), want 2 (60 min)", tm.state.SelectedIndex, tm.state.SelectedMinutes)
	}
	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyRight})
	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyRight})
	if tm.state.SelectedIndex != 3 {
		t.Fatalf("selection should clamp at 3, got %d", tm.state.SelectedIndex)
	}
	tm, _ = tm.update(runes("h"))
	if tm.state.SelectedIndex != 2 {
		t.Fatalf("h should move left, got %d", tm.state.SelectedIndex)
	}
}

func TestTimerStartNow(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	tm, _ = tm.update(runes("s"))
	if tm.state.Phase != engine.PhaseCountdown {
		t.Fatalf("phase = %v, want countdown", tm.state.Phase)
	}
	if tm.state.Countdown != 3 {
		t.Fatalf("countdown = %d, want 3", tm.state.Countdown)
	}
}

func TestTimerAnyKeyCancelsCountdown(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	tm, _ = tm.update(runes("s"))
	tm, _ = tm.update(runes("z"))
	if tm.state.Phase != engine.PhaseIdle {
		t.Fatalf("phase = %v, want idle", tm.state.Phase)
	}
	f.clock.Advance(5 * time.Second)
	if f.engine.State().Phase != engine.PhaseIdle {
		t.Fatal("cancelled countdown must not start focus")
	}
}

func TestTimerScheduledStart(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !tm.state.StartPending {
		t.Fatal("enter should schedule a start")
	}
	if !containsString(tm.view(), "Starting") {
		t.Fatal("pending start should be shown")
	}

	// Adjusting the selection cancels the pending start.
	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyLeft})
	if tm.state.StartPending {
		t.Fatal("selection change should cancel the pending start")
	}
	f.clock.Advance(2 * time.Second)
	if f.engine.State().Phase != engine.PhaseIdle {
		t.Fatal("cancelled start must not fire")
	}

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyEnter})
	f.clock.Advance(time.Second)
	if f.engine.State().Phase != engine.PhaseCountdown {
		t.Fatalf("phase = %v, want countdown", f.engine.State().Phase)
	}
}

func TestTimerCancelFocus(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	tm, _ = tm.update(runes("s"))
	f.clock.Advance(3 * time.Second)
	tm.state = f.engine.State()
	if tm.state.Phase != engine.PhaseFocus {
		t.Fatalf("phase = %v, want focus", tm.state.Phase)
	}
	if !tm.running() {
		t.Fatal("focus should count as running")
	}

	// Space does nothing during focus.
	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if tm.state.Phase != engine.PhaseFocus {
		t.Fatal("space should not cancel focus")
	}

	tm, cmd := tm.update(runes("x"))
	if tm.state.Phase != engine.PhaseIdle {
		t.Fatalf("phase = %v, want idle", tm.state.Phase)
	}
	if msg, ok := cmd().(statusMsg); !ok || msg.text != "Focus cancelled" {
		t.Fatalf("unexpected cmd result %#v", cmd())
	}
}

func TestTimerSkipBreak(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	tm, _ = tm.update(runes("s"))
	f.clock.Advance(3*time.Second + 25*time.Minute)
	tm.state = f.engine.State()
	if tm.state.Phase != engine.PhaseBreak {
		t.Fatalf("phase = %v, want break", tm.state.Phase)
	}
	if !containsString(tm.view(), "BREAK") {
		t.Fatal("break screen should be labelled")
	}

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if tm.state.Phase != engine.PhaseIdle {
		t.Fatalf("phase = %v, want idle", tm.state.Phase)
	}
}

func TestTimerFollowsEngineEvents(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)

	st := f.engine.State()
	st.Phase = engine.PhaseFocus
	st.Remaining = 754
	st.Progress = 0.5
	tm, _ = tm.update(engineEventMsg{Type: engine.EventProgress, State: st})

	out := tm.view()
	if !containsString(out, "12:34") {
		t.Fatal("remaining time should be rendered")
	}
	if !containsString(out, "50%") {
		t.Fatal("progress should be rendered")
	}
}

func TestTimerViews(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)
	tm.setSize(100, 36)

	if out := tm.view(); !containsString(out, "25:00") || !containsString(out, "5-minute break") {
		t.Fatal("idle view should show the selected duration and its break")
	}

	tm, _ = tm.update(runes("s"))
	if out := tm.view(); !containsString(out, "3") || !containsString(out, "cancel") {
		t.Fatal("countdown view should show the digit")
	}
}

func TestTimerBanner(t *testing.T) {
	f := newFixture(t)
	tm := newTimerModel(f.engine)
	tm.setSize(100, 36)

	at := epoch.Add(time.Minute)
	tm, cmd := tm.update(AlertMsg{Key: notify.FocusEndKey, Title: "Time's up", Body: "Your focus session has ended.", At: at})
	if cmd == nil {
		t.Fatal("banner should schedule its own expiry")
	}
	if !containsString(tm.view(), "Time's up") {
		t.Fatal("banner should be rendered")
	}

	// A stale expiry leaves a newer banner alone.
	tm, _ = tm.update(bannerExpiredMsg{at: epoch})
	if tm.banner == nil {
		t.Fatal("stale expiry cleared the banner")
	}
	tm, _ = tm.update(bannerExpiredMsg{at: at})
	if tm.banner != nil {
		t.Fatal("banner should expire")
	}
}

func TestRenderFill(t *testing.T) {
	if renderFill(0, 5, 0.5, "#ffffff") != "" {
		t.Fatal("zero width should render nothing")
	}
	out := renderFill(10, 6, 0.5, "#ff0000")
	if lipgloss.Height(out) != 6 {
		t.Fatalf("height = %d, want 6", lipgloss.Height(out))
	}
	if lipgloss.Width(out) != 10 {
		t.Fatalf("width = %d, want 10", lipgloss.Width(out))
	}
	// Out-of-range progress is clamped.
	if lipgloss.Height(renderFill(4, 3, 7, "#ff0000")) != 3 {
		t.Fatal("clamped fill should keep its height")
	}
}

// ============================================================
// History view
// ============================================================

func TestHistoryRefresh(t *testing.T) {
	f := newFixture(t)
	f.store.SaveSession(epoch.Add(-6*time.Hour), 25, true, 0.1)
	f.store.SaveSession(epoch.Add(-2*time.Hour), 60, true, 0.6)
	f.store.SaveSession(epoch.AddDate(0, 0, -30), 90, true, 0.6)

	h := newHistoryModel(f.store)
	h.now = func() time.Time { return epoch }
	h.setSize(120, 36)

	msg := h.refresh()()
	data, ok := msg.(historyDataMsg)
	if !ok {
		t.Fatalf("unexpected msg %T", msg)
	}
	if data.err != nil {
		t.Fatal(data.err)
	}
	h, _ = h.update(data)

	sessions, minutes := h.totals()
	if sessions != 2 || minutes != 85 {
		t.Fatalf("totals = %d sessions / %d min, want 2 / 85", sessions, minutes)
	}
	if len(h.recent) != 2 {
		t.Fatalf("recent = %d, want 2", len(h.recent))
	}
	out := h.view()
	if !containsString(out, "1h 25m") {
		t.Fatal("summary should show total focus time")
	}
	if !containsString(out, "hours ago") {
		t.Fatal("recent sessions should use relative times")
	}
}

func TestHistoryNavigation(t *testing.T) {
	f := newFixture(t)
	h := newHistoryModel(f.store)
	h.now = func() time.Time { return epoch }

	from, to := h.dateRange()
	if to.Sub(from) != 7*24*time.Hour {
		t.Fatalf("range = %v, want 7 days", to.Sub(from))
	}
	if !to.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("range should end after today, got %v", to)
	}

	h, cmd := h.update(tea.KeyMsg{Type: tea.KeyLeft})
	if h.offset != 1 || cmd == nil {
		t.Fatal("left should go back one week and reload")
	}
	prevFrom, _ := h.dateRange()
	if !prevFrom.Equal(from.AddDate(0, 0, -7)) {
		t.Fatalf("previous week starts %v", prevFrom)
	}

	h, _ = h.update(tea.KeyMsg{Type: tea.KeyRight})
	h, _ = h.update(tea.KeyMsg{Type: tea.KeyRight})
	if h.offset != 0 {
		t.Fatalf("offset should not go below 0, got %d", h.offset)
	}
}

func TestHistoryEmpty(t *testing.T) {
	f := newFixture(t)
	h := newHistoryModel(f.store)
	h.setSize(120, 36)
	if !containsString(h.view(), "No sessions") {
		t.Fatal("empty history should say so")
	}
}

// ============================================================
// Preferences view
// ============================================================

func TestSettingsSave(t *testing.T) {
	f := newFixture(t)
	var applied *store.Preferences
	s := newSettingsModel(f.store, func(p store.Preferences) { applied = &p })

	msg := s.refresh()().(settingsDataMsg)
	s, _ = s.update(msg)
	if !s.prefs.BreaksEnabled {
		t.Fatal("breaks should default to on")
	}

	s, _ = s.showForm()
	if !s.formActive || !*s.breaksEnabled {
		t.Fatal("form should open with current values")
	}
	*s.breaksEnabled = false
	*s.accelerate = true
	*s.speed = "10x"

	s, cmd := s.save()
	if _, ok := cmd().(preferencesSavedMsg); !ok {
		t.Fatal("save should report success")
	}
	if applied == nil || applied.BreaksEnabled || applied.Speed != "10x" {
		t.Fatalf("onSave got %+v", applied)
	}

	stored, err := f.store.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if stored.BreaksEnabled || !stored.Accelerate || stored.Speed != "10x" {
		t.Fatalf("stored = %+v", stored)
	}
	if !containsString(s.view(), "10x") {
		t.Fatal("view should show the saved speed")
	}
}

func TestSettingsEscClosesForm(t *testing.T) {
	f := newFixture(t)
	s := newSettingsModel(f.store, nil)
	s, _ = s.showForm()
	s, _ = s.update(tea.KeyMsg{Type: tea.KeyEsc})
	if s.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestOnOff(t *testing.T) {
	if onOff(true) != "on" || onOff(false) != "off" {
		t.Fatal("onOff")
	}
}

// ============================================================
// App
// ============================================================

func TestAppLoadingState(t *testing.T) {
	f := newFixture(t)
	app := NewApp(f.store, f.engine, nil)
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app := newFixture(t).app()

	for v := range viewNames {
		app.activeView = viewState(v)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newFixture(t).app()
	header := app.renderHeader()
	for _, name := range viewNames {
		if !containsString(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppTabs(t *testing.T) {
	app := newFixture(t).app()

	m, cmd := app.Update(runes("2"))
	app = m.(App)
	if app.activeView != viewHistory || cmd == nil {
		t.Fatal("2 should open history and load it")
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = m.(App)
	if app.activeView != viewPreferences {
		t.Fatalf("tab should cycle, got %d", app.activeView)
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewTimer {
		t.Fatal("tab should wrap around")
	}
}

func TestAppQuit(t *testing.T) {
	app := newFixture(t).app()
	_, cmd := app.Update(runes("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestAppEngineEventPump(t *testing.T) {
	f := newFixture(t)
	app := f.app()

	f.engine.Start()
	msg := listen(app.events)()
	ev, ok := msg.(engineEventMsg)
	if !ok {
		t.Fatalf("unexpected msg %T", msg)
	}
	if ev.State.Phase != engine.PhaseCountdown {
		t.Fatalf("phase = %v, want countdown", ev.State.Phase)
	}

	m, cmd := app.Update(ev)
	app = m.(App)
	if app.timer.state.Phase != engine.PhaseCountdown {
		t.Fatal("event should reach the timer view")
	}
	if cmd == nil {
		t.Fatal("pump should keep listening")
	}
}

func TestAppFooterShowsRunElsewhere(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	app.activeView = viewHistory

	st := f.engine.State()
	st.Phase = engine.PhaseFocus
	st.Remaining = 61
	app.timer.state = st

	if !containsString(app.renderFooter(), "01:01") {
		t.Fatal("footer should show the running timer")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newFixture(t).app()
	m, _ := app.Update(statusMsg{text: "test status"})
	if !containsString(m.(App).renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExport(t *testing.T) {
	f := newFixture(t)
	f.store.SaveSession(epoch, 25, true, 0.2)
	app := f.app()
	app.exportDir = t.TempDir()

	for format, ext := range []string{".csv", ".json"} {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("unexpected msg %#v", msg)
		}
		if !strings.HasSuffix(done.path, ext) {
			t.Fatalf("path = %q, want %s", done.path, ext)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAppExportPicker(t *testing.T) {
	app := newFixture(t).app()
	m, _ := app.Update(runes("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = m.(App)
	if app.exportCursor != 1 {
		t.Fatalf("cursor = %d, want 1", app.exportCursor)
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{1500, "25:00"},
		{3600, "1:00:00"},
		{5400, "1:30:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := formatMinutes(25); got != "25m" {
		t.Fatalf("got %q", got)
	}
	if got := formatMinutes(85); got != "1h 25m" {
		t.Fatalf("got %q", got)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	if len(keys.FullHelp()) != 4 {
		t.Fatalf("full help groups = %d, want 4", len(keys.FullHelp()))
	}
}
