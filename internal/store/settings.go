package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Preference keys in the settings table.
const (
	KeyBreaksEnabled = "breaks_enabled"
	KeyBreakQuotes   = "break_quotes"
	KeyNotifications = "notifications"
	KeyAccelerate    = "accelerate"
	KeySpeed         = "speed"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// SetSettings writes all pairs in a single transaction.
func (s *Store) SetSettings(pairs []Setting) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			p.Key, p.Value,
		); err != nil {
			return fmt.Errorf("set setting %q: %w", p.Key, err)
		}
	}
	return tx.Commit()
}

// DeleteSettings removes keys in a single transaction. Missing keys are ignored.
func (s *Store) DeleteSettings(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM settings WHERE key = ?`, k); err != nil {
			return fmt.Errorf("delete setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// LoadPreferences reads the user toggles, falling back to defaults for
// anything missing or unparsable.
func (s *Store) LoadPreferences() (Preferences, error) {
	p := DefaultPreferences()

	var firstErr error
	boolean := func(key string, dst *bool) {
		v, err := s.GetSetting(key)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) && firstErr == nil {
				firstErr = err
			}
			return
		}
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
	boolean(KeyBreaksEnabled, &p.BreaksEnabled)
	boolean(KeyBreakQuotes, &p.BreakQuotes)
	boolean(KeyNotifications, &p.Notifications)
	boolean(KeyAccelerate, &p.Accelerate)

	if v, err := s.GetSetting(KeySpeed); err == nil && v != "" {
		p.Speed = v
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) && firstErr == nil {
		firstErr = err
	}
	return p, firstErr
}

// SavePreferences writes all toggles at once.
func (s *Store) SavePreferences(p Preferences) error {
	return s.SetSettings([]Setting{
		{KeyBreaksEnabled, strconv.FormatBool(p.BreaksEnabled)},
		{KeyBreakQuotes, strconv.FormatBool(p.BreakQuotes)},
		{KeyNotifications, strconv.FormatBool(p.Notifications)},
		{KeyAccelerate, strconv.FormatBool(p.Accelerate)},
		{KeySpeed, p.Speed},
	})
}

// DefaultPreferences matches the values seeded by the first migration.
func DefaultPreferences() Preferences {
	return Preferences{
		BreaksEnabled: true,
		BreakQuotes:   true,
		Notifications: true,
		Speed:         "1x",
	}
}
