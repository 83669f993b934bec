package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/fillr/internal/engine"
	"github.com/sadopc/fillr/internal/store"
)

type jsonExport struct {
	ExportedAt   string        `json:"exported_at"`
	Count        int           `json:"count"`
	TotalMinutes int           `json:"total_minutes"`
	Sessions     []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID        int64   `json:"id"`
	UUID      string  `json:"uuid"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Minutes   int     `json:"minutes"`
	Duration  string  `json:"duration"`
	Completed bool    `json:"completed"`
	Hue       float64 `json:"hue"`
	Color     string  `json:"color"`
}

func ToJSON(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, sessions)
}

func WriteJSON(w io.Writer, sessions []store.Session) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	for _, s := range sessions {
		export.TotalMinutes += s.DurationMinutes
		export.Sessions = append(export.Sessions, jsonSession{
			ID:        s.ID,
			UUID:      s.UUID,
			StartTime: s.StartTime.Local().Format(time.RFC3339),
			EndTime:   sessionEnd(s).Local().Format(time.RFC3339),
			Minutes:   s.DurationMinutes,
			Duration:  formatDuration(int64(s.DurationMinutes) * 60),
			Completed: s.Completed,
			Hue:       s.ColorHue,
			Color:     engine.SessionHex(s.ColorHue),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
