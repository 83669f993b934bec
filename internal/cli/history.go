package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent focus sessions",
	Long: `List completed focus sessions, newest first.

Each row shows when the session started, how long it ran and the color it
filled the screen with.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of sessions to show (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	sessions, err := rt.store.ListSessions(store.SessionFilter{Limit: historyLimit})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions yet")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "STARTED", "WHEN", "LENGTH", "")
	for _, s := range sessions {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(engine.SessionHex(s.ColorHue))).Render("●")
		t.Row(
			strconv.FormatInt(s.ID, 10),
			s.StartTime.Local().Format("2006-01-02 15:04"),
			humanize.Time(s.StartTime),
			fmt.Sprintf("%d min", s.DurationMinutes),
			dot,
		)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}
