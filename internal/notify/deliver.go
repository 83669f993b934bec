package notify

import (
	"io"
	"log/slog"
)

// Bell rings the terminal bell on every alert.
type Bell struct {
	W io.Writer
}

func (b Bell) Deliver(Notification) {
	_, _ = io.WriteString(b.W, "\a")
}

// Log records every alert at info level.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Deliver(n Notification) {
	l.Logger.Info("alert", "key", n.Key, "title", n.Title, "body", n.Body)
}
