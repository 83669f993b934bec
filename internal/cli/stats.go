package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus totals",
	Long:  `Show completed sessions and focus time for today, the last 7 days and all time.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

type statsRange struct {
	label    string
	from, to time.Time
}

func statsRanges(now time.Time) []statsRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	return []statsRange{
		{"Today", today, tomorrow},
		{"Last 7 days", today.AddDate(0, 0, -6), tomorrow},
		{"All time", time.Unix(0, 0), tomorrow},
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	for _, r := range statsRanges(time.Now()) {
		count, minutes, err := rt.store.GetSessionStats(r.from, r.to)
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}
		fmt.Fprintf(out, "%-12s %s %s, %s\n",
			r.label+":",
			humanize.Comma(int64(count)),
			plural(count, "session", "sessions"),
			formatMinutes(minutes),
		)
	}
	return nil
}

func formatMinutes(mins int64) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%sh %02dm", humanize.Comma(mins/60), mins%60)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
