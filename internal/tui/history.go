package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/store"
)

const historyDays = 7

type historyModel struct {
	store  *store.Store
	width  int
	height int

	days    []store.DailyFocus
	recent  []store.Session
	offset  int // 7-day blocks back from today
	now     func() time.Time
	loadErr error

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
	h.buildChart()
}

type historyDataMsg struct {
	days   []store.DailyFocus
	recent []store.Session
	err    error
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := h.dateRange()
		days, err := h.store.GetDailyFocus(from, to)
		if err != nil {
			return historyDataMsg{err: err}
		}
		recent, err := h.store.ListSessions(store.SessionFilter{From: &from, To: &to, Limit: 8})
		return historyDataMsg{days: days, recent: recent, err: err}
	}
}

// dateRange returns the UTC days shown, [from, to).
func (h historyModel) dateRange() (time.Time, time.Time) {
	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-historyDays*h.offset)
	return end.AddDate(0, 0, -historyDays), end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.days = msg.days
		h.recent = msg.recent
		h.loadErr = msg.err
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			return h, h.refresh()
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := max(h.width-8, 20)
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DailyFocus, len(h.days))
	for _, d := range h.days {
		byDate[d.Date] = d
	}

	from, to := h.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		minutes := float64(byDate[d.Format("2006-01-02")].Minutes)
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "focus",
				Value: minutes,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) totals() (sessions int, minutes int64) {
	for _, d := range h.days {
		sessions += d.Sessions
		minutes += d.Minutes
	}
	return sessions, minutes
}

func (h historyModel) view() string {
	w := h.width - 4

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s – %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("History"), "  ", dateLabel)

	if h.loadErr != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", errorStyle.Render("  "+h.loadErr.Error()),
		))
	}

	sessions, minutes := h.totals()
	summary := fmt.Sprintf("  %s focused across %s",
		highlightStyle.Render(formatMinutes(minutes)),
		highlightStyle.Render(fmt.Sprintf("%d %s", sessions, plural(sessions, "session", "sessions"))),
	)

	nav := mutedStyle.Render("  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", summary, "", h.renderRecent(w), "", nav,
		),
	)
}

func (h historyModel) renderRecent(w int) string {
	if len(h.recent) == 0 {
		return mutedStyle.Render("  No sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %8s  %s", "Started", "Length", "")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 40))))

	now := h.now()
	for _, s := range h.recent {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(engine.SessionHex(s.ColorHue))).Render("●")
		rows = append(rows, fmt.Sprintf("  %-18s %8s  %s",
			humanize.RelTime(s.StartTime, now, "ago", "from now"),
			formatMinutes(int64(s.DurationMinutes)),
			dot,
		))
	}
	return strings.Join(rows, "\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
