package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaveSession appends a focus session to the log.
func (s *Store) SaveSession(start time.Time, durationMinutes int, completed bool, colorHue float64) (*Session, error) {
	id := uuid.NewString()
	res, err := s.db.Exec(
		`INSERT INTO sessions (uuid, start_time, duration_minutes, completed, color_hue, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, start.UTC().Format(time.RFC3339), durationMinutes, completed, colorHue,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	rowID, _ := res.LastInsertId()
	return s.GetSession(rowID)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, uuid, start_time, duration_minutes, completed, color_hue, created_at
		 FROM sessions WHERE id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("get session %d: %w", id, sql.ErrNoRows)
	}
	return &sessions[0], nil
}

// ListSessions returns sessions newest first.
func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	var where []string
	var args []any

	if f.From != nil {
		where = append(where, "start_time >= ?")
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		where = append(where, "start_time < ?")
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if f.CompletedOnly {
		where = append(where, "completed = 1")
	}

	q := `SELECT id, uuid, start_time, duration_minutes, completed, color_hue, created_at FROM sessions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY start_time DESC, id DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		var sess Session
		var startTime, createdAt string
		if err := rows.Scan(&sess.ID, &sess.UUID, &startTime, &sess.DurationMinutes,
			&sess.Completed, &sess.ColorHue, &createdAt); err != nil {
			return nil, err
		}
		sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
		sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetDailyFocus returns completed focus minutes per UTC day in [from, to).
func (s *Store) GetDailyFocus(from, to time.Time) ([]DailyFocus, error) {
	rows, err := s.db.Query(`
		SELECT substr(start_time, 1, 10) AS day,
		       COALESCE(SUM(duration_minutes), 0),
		       COUNT(*)
		FROM sessions
		WHERE completed = 1
		  AND start_time >= ? AND start_time < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily focus: %w", err)
	}
	defer rows.Close()

	var out []DailyFocus
	for rows.Next() {
		var d DailyFocus
		if err := rows.Scan(&d.Date, &d.Minutes, &d.Sessions); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetSessionStats(from, to time.Time) (completed int, totalMinutes int64, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0)
		FROM sessions
		WHERE completed = 1
		  AND start_time >= ? AND start_time < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&completed, &totalMinutes)
	return
}
