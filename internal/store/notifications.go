package store

import (
	"fmt"
	"time"
)

// UpsertPendingNotification stores n, replacing any pending alert with the same key.
func (s *Store) UpsertPendingNotification(n PendingNotification) error {
	_, err := s.db.Exec(
		`INSERT INTO pending_notifications (key, title, body, due_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET title = excluded.title, body = excluded.body, due_at = excluded.due_at`,
		n.Key, n.Title, n.Body, n.DueAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert notification %q: %w", n.Key, err)
	}
	return nil
}

func (s *Store) DeletePendingNotification(key string) error {
	if _, err := s.db.Exec(`DELETE FROM pending_notifications WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete notification %q: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteAllPendingNotifications() error {
	if _, err := s.db.Exec(`DELETE FROM pending_notifications`); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

// ListPendingNotifications returns pending alerts, soonest first.
func (s *Store) ListPendingNotifications() ([]PendingNotification, error) {
	rows, err := s.db.Query(`SELECT key, title, body, due_at FROM pending_notifications ORDER BY due_at`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []PendingNotification
	for rows.Next() {
		var n PendingNotification
		var due string
		if err := rows.Scan(&n.Key, &n.Title, &n.Body, &due); err != nil {
			return nil, err
		}
		n.DueAt, _ = time.Parse(time.RFC3339Nano, due)
		out = append(out, n)
	}
	return out, rows.Err()
}
