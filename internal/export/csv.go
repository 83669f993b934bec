package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/store"
)

func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, sessions)
}

func WriteCSV(out io.Writer, sessions []store.Session) error {
	w := csv.NewWriter(out)

	// Header
	if err := w.Write([]string{"ID", "UUID", "Start", "End", "Minutes", "Duration", "Completed", "Color"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.UUID,
			s.StartTime.Local().Format(time.RFC3339),
			sessionEnd(s).Local().Format(time.RFC3339),
			strconv.Itoa(s.DurationMinutes),
			formatDuration(int64(s.DurationMinutes) * 60),
			strconv.FormatBool(s.Completed),
			engine.SessionHex(s.ColorHue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func sessionEnd(s store.Session) time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
