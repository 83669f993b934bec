package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/fillr/internal/export"
	"github.com/sadopc/fillr/internal/store"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the session log as CSV or JSON",
	Long: `Export every recorded focus session.

Writes to stdout unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	var write func(io.Writer, []store.Session) error
	switch exportFormat {
	case "csv":
		write = export.WriteCSV
	case "json":
		write = export.WriteJSON
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	sessions, err := rt.store.ListSessions(store.SessionFilter{})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if exportOut == "" || exportOut == "-" {
		return write(cmd.OutOrStdout(), sessions)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOut, err)
	}
	if err := write(f, sessions); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d sessions to %s\n", len(sessions), exportOut)
	return nil
}
