// Package engine implements the focus timer's phase state machine:
// idle → countdown → focus → break → idle.
//
// The engine owns all timer state. Public methods and timer callbacks are
// serialized by a single mutex. Every scheduled task carries a generation
// number, so a callback for a task that has since been stopped or replaced
// returns without doing anything.
package engine

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sadopc/fillr/internal/clock"
	"github.com/sadopc/fillr/internal/store"
)

const (
	countdownFrom     = 3
	countdownInterval = time.Second
	// Delivered break alerts are tidied after this grace period so the
	// cancellation cannot preempt delivery.
	breakCleanupDelay = time.Second
)

// ErrNoPresets is returned by New when the preset list is empty or has a
// non-positive entry.
var ErrNoPresets = errors.New("engine: presets must be positive minutes")

// Notifier schedules and cancels the focus-end and break-end alerts.
// breakMinutes is 0 when no break follows the focus run.
type Notifier interface {
	RequestAuthorizationIfNeeded()
	ScheduleFocusEnd(at time.Time, breakMinutes int)
	ScheduleBreakEnd(at time.Time, includeQuote bool)
	CancelFocusPending()
	CancelBreakPending()
	CancelAllPending()
}

// SessionLog records completed focus sessions.
type SessionLog interface {
	SaveSession(start time.Time, durationMinutes int, completed bool, colorHue float64) (*store.Session, error)
}

// SnapshotStore persists the in-flight run across process restarts.
type SnapshotStore interface {
	SaveSnapshot(store.Snapshot) error
	LoadSnapshot() (store.Snapshot, error)
	ClearSnapshot() error
}

// Settings are read when a run is created and never re-read mid-run.
type Settings struct {
	BreaksEnabled bool
	BreakQuotes   bool
	Multiplier    float64 // 1.0 is real time
}

// Options configures a new Engine.
type Options struct {
	Presets       []int // focus minutes
	SelectedIndex int
	TickInterval  time.Duration // display refresh, default 33ms
	StartDelay    time.Duration // inactivity before ScheduleStart fires, default 1s
	KeepRunOnExit bool
	Settings      Settings
	Logger        *slog.Logger
	Hue           func() float64 // defaults to rand.Float64
}

type run struct {
	start    time.Time
	end      time.Time
	duration time.Duration
	minutes  int // unscaled preset minutes, 0 for a restored break
	// breaks is captured when a focus run is created and decides both the
	// focus-end alert text and whether a break follows.
	breaks bool
}

type task struct {
	handle clock.Handle
	gen    uint64
}

func (t *task) live(gen uint64) bool { return t.handle != nil && t.gen == gen }

func (t *task) stop() {
	if t.handle != nil {
		t.handle.Stop()
	}
	t.handle = nil
	t.gen = 0
}

// Engine is the phase state machine.
type Engine struct {
	mu        sync.Mutex
	clock     clock.Clock
	notifier  Notifier
	snapshots SnapshotStore
	sessions  SessionLog
	logger    *slog.Logger
	hue       func() float64

	presets       []int
	settings      Settings
	tickInterval  time.Duration
	startDelay    time.Duration
	keepRunOnExit bool

	phase     Phase
	selected  int
	countdown int
	progress  float64
	remaining int
	colorHue  float64
	run       *run

	gen           uint64
	countdownTask task
	displayTask   task
	startTask     task
	cleanupTask   task

	events []chan Event
	closed bool
}

// New creates an idle Engine.
func New(clk clock.Clock, notifier Notifier, snapshots SnapshotStore, opts Options) (*Engine, error) {
	if len(opts.Presets) == 0 {
		return nil, ErrNoPresets
	}
	for _, m := range opts.Presets {
		if m <= 0 {
			return nil, ErrNoPresets
		}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 33 * time.Millisecond
	}
	if opts.StartDelay <= 0 {
		opts.StartDelay = time.Second
	}
	if opts.Settings.Multiplier <= 0 {
		opts.Settings.Multiplier = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Hue == nil {
		opts.Hue = rand.Float64
	}

	e := &Engine{
		clock:         clk,
		notifier:      notifier,
		snapshots:     snapshots,
		logger:        opts.Logger,
		hue:           opts.Hue,
		presets:       append([]int(nil), opts.Presets...),
		settings:      opts.Settings,
		tickInterval:  opts.TickInterval,
		startDelay:    opts.StartDelay,
		keepRunOnExit: opts.KeepRunOnExit,
		phase:         PhaseIdle,
		countdown:     countdownFrom,
	}
	e.selected = e.clampIndex(opts.SelectedIndex)
	return e, nil
}

// AttachSessionLog sets where completed sessions are recorded. With no
// session log attached, completions are only logged.
func (e *Engine) AttachSessionLog(log SessionLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions = log
}

// Configure replaces the run settings. They apply from the next run created.
func (e *Engine) Configure(s Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.Multiplier <= 0 {
		s.Multiplier = 1
	}
	e.settings = s
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the engine.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// State returns the current observable state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// AdjustSelection moves the selected preset by delta steps, clamped to the
// preset list. It reports whether the selection changed. Phase gating is the
// caller's responsibility.
func (e *Engine) AdjustSelection(delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.clampIndex(e.selected + delta)
	if next == e.selected {
		return false
	}
	e.selected = next
	e.emitLocked(EventSelection)
	return true
}

// ScheduleStart starts the countdown after the configured inactivity delay.
// Calling it again restarts the delay.
func (e *Engine) ScheduleStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.phase != PhaseIdle {
		return
	}
	e.afterLocked(&e.startTask, e.startDelay, e.startLocked)
	e.emitLocked(EventPendingStart)
}

// CancelPendingStart cancels a ScheduleStart that has not fired yet.
func (e *Engine) CancelPendingStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startTask.handle == nil {
		return
	}
	e.startTask.stop()
	e.emitLocked(EventPendingStart)
}

// Start moves from idle to the 3-2-1 countdown.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startTask.stop()
	e.startLocked()
}

func (e *Engine) startLocked() {
	if e.closed || e.phase != PhaseIdle {
		return
	}
	e.notifier.RequestAuthorizationIfNeeded()
	e.countdown = countdownFrom
	e.phase = PhaseCountdown
	e.everyLocked(&e.countdownTask, countdownInterval, e.countdownTickLocked)
	e.logger.Debug("countdown started", "minutes", e.presets[e.selected])
	e.emitLocked(EventPhase)
}

// CancelCountdown returns to idle from the countdown. It also drops a
// pending scheduled start.
func (e *Engine) CancelCountdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startTask.stop()
	e.countdownTask.stop()
	e.countdown = countdownFrom
	if e.phase != PhaseCountdown {
		return
	}
	e.phase = PhaseIdle
	e.logger.Debug("countdown cancelled")
	e.emitLocked(EventPhase)
}

func (e *Engine) countdownTickLocked() {
	if e.phase != PhaseCountdown {
		e.countdownTask.stop()
		return
	}
	if e.countdown > 0 {
		e.countdown--
		e.emitLocked(EventCountdown)
	}
	if e.countdown <= 0 {
		e.countdownTask.stop()
		e.beginFocusLocked(e.clock.Now())
	}
}

func (e *Engine) beginFocusLocked(now time.Time) {
	minutes := e.presets[e.selected]
	duration := scaledDuration(minutes, e.settings.Multiplier)

	e.colorHue = e.hue()
	e.run = &run{start: now, end: now.Add(duration), duration: duration, minutes: minutes, breaks: e.settings.BreaksEnabled}

	breakMinutes := 0
	if e.run.breaks {
		breakMinutes = BreakMinutes(minutes)
	}

	e.saveSnapshotLocked(store.Snapshot{
		Phase:         store.SnapshotFocus,
		EndAt:         e.run.end,
		Duration:      duration,
		ColorHue:      e.colorHue,
		SelectedIndex: e.selected,
	})
	e.notifier.ScheduleFocusEnd(e.run.end, breakMinutes)

	e.enterRunLocked(PhaseFocus)
	e.logger.Info("focus started", "minutes", minutes, "duration", duration, "hue", e.colorHue)
}

func (e *Engine) beginBreakLocked(now time.Time) {
	minutes := BreakMinutes(e.run.minutes)
	duration := scaledDuration(minutes, e.settings.Multiplier)
	e.run = &run{start: now, end: now.Add(duration), duration: duration, minutes: minutes}

	e.saveSnapshotLocked(store.Snapshot{
		Phase:         store.SnapshotBreak,
		EndAt:         e.run.end,
		Duration:      duration,
		ColorHue:      e.colorHue,
		SelectedIndex: e.selected,
		BreakEndAt:    e.run.end,
		BreakDuration: duration,
	})
	e.notifier.ScheduleBreakEnd(e.run.end, e.settings.BreakQuotes)

	e.enterRunLocked(PhaseBreak)
	e.logger.Info("break started", "minutes", minutes, "duration", duration)
}

// enterRunLocked switches to a running phase and starts display ticking.
func (e *Engine) enterRunLocked(p Phase) {
	e.phase = p
	e.progress = 0
	e.remaining = int(math.Ceil(e.run.duration.Seconds()))
	e.everyLocked(&e.displayTask, e.tickInterval, func() { e.tickLocked(e.clock.Now()) })
	e.emitLocked(EventPhase)
}

// tickLocked republishes progress and completes the run once it is over.
// A clock that has moved before the run's start also completes it.
func (e *Engine) tickLocked(now time.Time) {
	if e.run == nil || !e.phase.Running() {
		e.displayTask.stop()
		return
	}

	progress, remaining := Progress(now, e.run.start, e.run.end)
	if progress != e.progress || remaining != e.remaining {
		e.progress = progress
		e.remaining = remaining
		e.emitLocked(EventProgress)
	}

	if !now.Before(e.run.end) || now.Before(e.run.start) {
		e.completeLocked(now)
	}
}

func (e *Engine) completeLocked(now time.Time) {
	e.displayTask.stop()
	if e.progress != 1 || e.remaining != 0 {
		e.progress = 1
		e.remaining = 0
		e.emitLocked(EventProgress)
	}

	switch e.phase {
	case PhaseFocus:
		e.saveSessionLocked()
		if e.run.breaks {
			e.beginBreakLocked(now)
			return
		}
		e.clearSnapshotLocked()
		e.logger.Info("focus completed", "breaks", false)
		e.enterIdleLocked()

	case PhaseBreak:
		e.clearSnapshotLocked()
		e.afterLocked(&e.cleanupTask, breakCleanupDelay, e.notifier.CancelBreakPending)
		e.logger.Info("break completed")
		e.enterIdleLocked()
	}
}

// CancelFocus stops a running focus run without recording it.
func (e *Engine) CancelFocus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseFocus {
		return
	}
	e.displayTask.stop()
	e.notifier.CancelFocusPending()
	e.clearSnapshotLocked()
	e.logger.Info("focus cancelled", "remaining", e.remaining)
	e.enterIdleLocked()
}

// SkipBreak ends a running break early.
func (e *Engine) SkipBreak() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseBreak {
		return
	}
	e.displayTask.stop()
	e.notifier.CancelBreakPending()
	e.clearSnapshotLocked()
	e.logger.Info("break skipped", "remaining", e.remaining)
	e.enterIdleLocked()
}

// HandleTerminating is called when the process is about to exit. By default
// the in-flight run is abandoned: pending alerts are cancelled and the
// snapshot cleared. With KeepRunOnExit only timers are stopped, so the run
// resumes on the next launch.
func (e *Engine) HandleTerminating() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTasksLocked()
	if e.keepRunOnExit {
		return
	}
	e.notifier.CancelAllPending()
	e.clearSnapshotLocked()
	if e.phase != PhaseIdle {
		e.enterIdleLocked()
	}
}

// Close stops all timers and closes subscriber channels. The engine is
// inert afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopTasksLocked()
	e.closed = true
	for _, ch := range e.events {
		close(ch)
	}
	e.events = nil
}

func (e *Engine) stopTasksLocked() {
	e.startTask.stop()
	e.countdownTask.stop()
	e.displayTask.stop()
	e.cleanupTask.stop()
}

func (e *Engine) enterIdleLocked() {
	e.phase = PhaseIdle
	e.run = nil
	e.progress = 0
	e.remaining = 0
	e.countdown = countdownFrom
	e.emitLocked(EventPhase)
}

func (e *Engine) saveSessionLocked() {
	if e.run == nil {
		return
	}
	minutes := int(math.Round(e.run.duration.Minutes()))
	if e.sessions == nil {
		e.logger.Warn("no session log attached, session not saved", "minutes", minutes)
		return
	}
	if _, err := e.sessions.SaveSession(e.run.start, minutes, true, e.colorHue); err != nil {
		e.logger.Error("save session", "err", err)
	}
}

func (e *Engine) saveSnapshotLocked(snap store.Snapshot) {
	if err := e.snapshots.SaveSnapshot(snap); err != nil {
		e.logger.Error("save snapshot", "phase", snap.Phase, "err", err)
	}
}

func (e *Engine) clearSnapshotLocked() {
	if err := e.snapshots.ClearSnapshot(); err != nil {
		e.logger.Error("clear snapshot", "err", err)
	}
}

// everyLocked replaces t with a repeating task running fn under the lock.
func (e *Engine) everyLocked(t *task, d time.Duration, fn func()) {
	t.stop()
	e.gen++
	gen := e.gen
	t.gen = gen
	t.handle = e.clock.Every(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !t.live(gen) {
			return
		}
		fn()
	})
}

// afterLocked replaces t with a one-shot task running fn under the lock.
// The handle is cleared before fn runs.
func (e *Engine) afterLocked(t *task, d time.Duration, fn func()) {
	t.stop()
	e.gen++
	gen := e.gen
	t.gen = gen
	t.handle = e.clock.After(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !t.live(gen) {
			return
		}
		t.handle = nil
		t.gen = 0
		fn()
	})
}

func (e *Engine) clampIndex(i int) int {
	return max(0, min(len(e.presets)-1, i))
}

func (e *Engine) stateLocked() State {
	return State{
		Phase:           e.phase,
		Progress:        e.progress,
		Remaining:       e.remaining,
		Countdown:       e.countdown,
		ColorHue:        e.colorHue,
		SelectedIndex:   e.selected,
		SelectedMinutes: e.presets[e.selected],
		Presets:         append([]int(nil), e.presets...),
		StartPending:    e.startTask.handle != nil,
	}
}

func (e *Engine) emitLocked(t EventType) {
	if len(e.events) == 0 {
		return
	}
	ev := Event{Type: t, State: e.stateLocked(), At: e.clock.Now()}
	for _, ch := range e.events {
		select {
		case ch <- ev:
		default:
		}
	}
}
