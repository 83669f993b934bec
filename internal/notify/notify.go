// Package notify is fillr's local alert gateway. At most one alert is
// pending per fixed key, and rescheduling a key replaces it. Pending alerts
// are persisted so they still fire after a restart.
package notify

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sadopc/fillr/internal/clock"
	"github.com/sadopc/fillr/internal/store"
)

// Alert keys.
const (
	FocusEndKey = "fillr.focus.end"
	BreakEndKey = "fillr.break.end"
)

// Authorization is the user's answer to the alert permission request.
type Authorization int

const (
	Undetermined Authorization = iota
	Granted
	Denied
)

func (a Authorization) String() string {
	switch a {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	}
	return "undetermined"
}

// Notification is a delivered alert.
type Notification struct {
	Key   string
	Title string
	Body  string
	At    time.Time
}

// Deliverer presents a notification to the user.
type Deliverer interface {
	Deliver(Notification)
}

// DelivererFunc adapts a func to Deliverer.
type DelivererFunc func(Notification)

func (f DelivererFunc) Deliver(n Notification) { f(n) }

// PendingStore persists alerts that have not been delivered yet.
type PendingStore interface {
	UpsertPendingNotification(store.PendingNotification) error
	DeletePendingNotification(key string) error
	DeleteAllPendingNotifications() error
	ListPendingNotifications() ([]store.PendingNotification, error)
}

// Options configures a Center.
type Options struct {
	Allow  bool                // answer given when authorization is first requested
	Store  PendingStore        // optional
	Quotes []string            // defaults to DefaultQuotes
	Pick   func(n int) int     // quote picker, defaults to rand.IntN
	Logger *slog.Logger
}

type pendingAlert struct {
	n      store.PendingNotification
	handle clock.Handle
	gen    uint64
}

// Center schedules, cancels and delivers alerts.
type Center struct {
	mu         sync.Mutex
	clock      clock.Clock
	store      PendingStore
	deliverers []Deliverer
	quotes     []string
	pick       func(n int) int
	logger     *slog.Logger

	allow   bool
	auth    Authorization
	muted   bool
	pending map[string]*pendingAlert
	gen     uint64
}

// New returns a Center delivering to deliverers.
func New(clk clock.Clock, opts Options, deliverers ...Deliverer) *Center {
	if len(opts.Quotes) == 0 {
		opts.Quotes = DefaultQuotes
	}
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Center{
		clock:      clk,
		store:      opts.Store,
		deliverers: deliverers,
		quotes:     opts.Quotes,
		pick:       opts.Pick,
		logger:     opts.Logger,
		allow:      opts.Allow,
		pending:    make(map[string]*pendingAlert),
	}
}

// AddDeliverer registers another output, e.g. the TUI once it is running.
func (c *Center) AddDeliverer(d Deliverer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliverers = append(c.deliverers, d)
}

// SetMuted drops deliveries without touching the schedule.
func (c *Center) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

// Authorization returns the current permission state.
func (c *Center) Authorization() Authorization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// RequestAuthorizationIfNeeded decides the permission state once.
// Later calls are no-ops.
func (c *Center) RequestAuthorizationIfNeeded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestLocked()
}

func (c *Center) requestLocked() {
	if c.auth != Undetermined {
		return
	}
	c.auth = Denied
	if c.allow {
		c.auth = Granted
	}
	c.logger.Info("notification authorization", "state", c.auth)
}

// ScheduleFocusEnd posts the focus-end alert at at. breakMinutes > 0 adds
// the upcoming break to the body.
func (c *Center) ScheduleFocusEnd(at time.Time, breakMinutes int) {
	c.schedule(FocusEndKey, "Time's up", FocusEndBody(breakMinutes), at)
}

// ScheduleBreakEnd posts the break-end alert at at, optionally with a quote.
func (c *Center) ScheduleBreakEnd(at time.Time, includeQuote bool) {
	quote := ""
	if includeQuote && len(c.quotes) > 0 {
		quote = c.quotes[c.pick(len(c.quotes))]
	}
	c.schedule(BreakEndKey, "Break's over", BreakEndBody(quote), at)
}

func (c *Center) CancelFocusPending() { c.cancel(FocusEndKey) }
func (c *Center) CancelBreakPending() { c.cancel(BreakEndKey) }

// CancelAllPending removes every alert not yet delivered.
func (c *Center) CancelAllPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pending {
		p.handle.Stop()
		delete(c.pending, key)
	}
	if c.store != nil {
		if err := c.store.DeleteAllPendingNotifications(); err != nil {
			c.logger.Error("clear pending notifications", "err", err)
		}
	}
}

// Pending returns the due time of the alert pending under key.
func (c *Center) Pending(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[key]
	if !ok {
		return time.Time{}, false
	}
	return p.n.DueAt, true
}

// Resume re-arms alerts persisted by a previous process. Alerts that came
// due while it was down are delivered right away.
func (c *Center) Resume() error {
	if c.store == nil {
		return nil
	}
	list, err := c.store.ListPendingNotifications()
	if err != nil {
		return fmt.Errorf("resume notifications: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(list) > 0 {
		c.requestLocked()
	}
	now := c.clock.Now()
	for _, n := range list {
		c.armLocked(n, max(0, n.DueAt.Sub(now)))
	}
	c.logger.Debug("notifications resumed", "count", len(list))
	return nil
}

func (c *Center) schedule(key, title, body string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	secs := max(1, int(math.Round(at.Sub(now).Seconds())))
	delay := time.Duration(secs) * time.Second
	n := store.PendingNotification{Key: key, Title: title, Body: body, DueAt: now.Add(delay)}

	if c.store != nil {
		if err := c.store.UpsertPendingNotification(n); err != nil {
			c.logger.Error("persist notification", "key", key, "err", err)
		}
	}
	c.armLocked(n, delay)
	c.logger.Debug("notification scheduled", "key", key, "in", delay)
}

// armLocked replaces any alert pending under n.Key.
func (c *Center) armLocked(n store.PendingNotification, delay time.Duration) {
	if old, ok := c.pending[n.Key]; ok {
		old.handle.Stop()
	}
	c.gen++
	gen := c.gen
	p := &pendingAlert{n: n, gen: gen}
	c.pending[n.Key] = p
	p.handle = c.clock.After(delay, func() { c.fire(n.Key, gen) })
}

func (c *Center) cancel(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[key]; ok {
		p.handle.Stop()
		delete(c.pending, key)
	}
	if c.store != nil {
		if err := c.store.DeletePendingNotification(key); err != nil {
			c.logger.Error("cancel notification", "key", key, "err", err)
		}
	}
}

func (c *Center) fire(key string, gen uint64) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok || p.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	if c.store != nil {
		if err := c.store.DeletePendingNotification(key); err != nil {
			c.logger.Error("remove delivered notification", "key", key, "err", err)
		}
	}
	deliver := c.auth == Granted && !c.muted
	deliverers := append([]Deliverer(nil), c.deliverers...)
	n := Notification{Key: key, Title: p.n.Title, Body: p.n.Body, At: c.clock.Now()}
	c.mu.Unlock()

	if !deliver {
		c.logger.Info("notification dropped", "key", key, "authorization", c.Authorization())
		return
	}
	c.logger.Info("notification delivered", "key", key, "title", n.Title)
	for _, d := range deliverers {
		d.Deliver(n)
	}
}
