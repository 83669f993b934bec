package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/fillr/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the run in progress",
	Long: `Show the focus or break run saved for restoration, if any, and the
alerts still waiting to be delivered.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// snapshotEnd returns the end and length of the phase the snapshot describes.
func snapshotEnd(snap store.Snapshot) (time.Time, time.Duration) {
	if snap.Phase == store.SnapshotBreak && !snap.BreakEndAt.IsZero() && snap.BreakDuration > 0 {
		return snap.BreakEndAt, snap.BreakDuration
	}
	return snap.EndAt, snap.Duration
}

func runStatus(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	now := time.Now()

	snap, err := rt.store.LoadSnapshot()
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		fmt.Fprintln(out, "No active run")
	case errors.Is(err, store.ErrInvalidSnapshot):
		fmt.Fprintf(out, "Saved run is unreadable and will be discarded on next launch: %v\n", err)
	case err != nil:
		return fmt.Errorf("failed to read saved run: %w", err)
	default:
		end, duration := snapshotEnd(snap)
		if !end.After(now) {
			fmt.Fprintf(out, "Last %s run ended %s\n", snap.Phase, humanize.Time(end))
			break
		}
		fmt.Fprintln(out, "Active run:")
		fmt.Fprintf(out, "  Phase:     %s\n", snap.Phase)
		fmt.Fprintf(out, "  Length:    %s\n", duration.Round(time.Second))
		fmt.Fprintf(out, "  Ends:      %s (%s)\n", end.Local().Format("15:04:05"), humanize.Time(end))
	}

	pending, err := rt.store.ListPendingNotifications()
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}
	if len(pending) > 0 {
		fmt.Fprintln(out, "Pending alerts:")
		for _, n := range pending {
			fmt.Fprintf(out, "  %-16s %s (%s)\n", n.Key, n.Title, humanize.Time(n.DueAt))
		}
	}
	return nil
}
