package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/fillr/internal/clock"
	"github.com/sadopc/fillr/internal/config"
	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/notify"
	"github.com/sadopc/fillr/internal/store"
	"github.com/sadopc/fillr/internal/tui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	prefs, err := rt.store.LoadPreferences()
	if err != nil {
		rt.logger.Warn("load preferences, using defaults", "err", err)
	}

	clk := clock.Real{}

	deliverers := []notify.Deliverer{notify.Log{Logger: rt.logger}}
	if rt.cfg.Bell {
		deliverers = append(deliverers, notify.Bell{W: os.Stderr})
	}
	center := notify.New(clk, notify.Options{
		Allow:  prefs.Notifications,
		Store:  rt.store,
		Logger: rt.logger,
	}, deliverers...)
	center.SetMuted(!prefs.Notifications)
	if err := center.Resume(); err != nil {
		rt.logger.Warn("resume notifications", "err", err)
	}

	eng, err := engine.New(clk, center, rt.store, engine.Options{
		Presets:       rt.cfg.Presets,
		SelectedIndex: rt.cfg.DefaultIndex,
		TickInterval:  rt.cfg.TickInterval(),
		StartDelay:    rt.cfg.StartDelay(),
		KeepRunOnExit: rt.cfg.KeepRunOnExit,
		Settings:      config.RunSettings(prefs),
		Logger:        rt.logger,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()
	eng.AttachSessionLog(rt.store)

	app := tui.NewApp(rt.store, eng, func(p store.Preferences) {
		eng.Configure(config.RunSettings(p))
		center.SetMuted(!p.Notifications)
		rt.logger.Info("preferences updated", "breaks", p.BreaksEnabled, "speed", p.Speed, "accelerate", p.Accelerate)
	})
	eng.RestoreIfNeeded()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	center.AddDeliverer(tui.Deliverer(p))

	_, runErr := p.Run()
	eng.HandleTerminating()

	if runErr != nil && !errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}
