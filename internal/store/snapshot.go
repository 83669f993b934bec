package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SnapshotSchemaVersion is bumped whenever the snapshot layout changes.
// Snapshots written by another version are rejected as invalid.
const SnapshotSchemaVersion = 1

// Snapshot keys in the settings table. They are written and removed together.
const (
	KeyActiveEndDate         = "activeEndDate"
	KeyActiveColorHue        = "activeColorHue"
	KeyActiveDurationSeconds = "activeDurationSeconds"
	KeyActiveSelectedIndex   = "activeSelectedIndex"
	KeyBreakEndDate          = "breakEndDate"
	KeyBreakDurationSeconds  = "breakDurationSeconds"
	KeyActivePhase           = "activePhase"
	KeyActiveSchemaVersion   = "activeSchemaVersion"
)

var snapshotKeys = []string{
	KeyActiveEndDate,
	KeyActiveColorHue,
	KeyActiveDurationSeconds,
	KeyActiveSelectedIndex,
	KeyBreakEndDate,
	KeyBreakDurationSeconds,
	KeyActivePhase,
	KeyActiveSchemaVersion,
}

var (
	// ErrNoSnapshot means no run was in flight.
	ErrNoSnapshot = errors.New("no active run snapshot")
	// ErrInvalidSnapshot means the stored snapshot is partial or unreadable.
	ErrInvalidSnapshot = errors.New("invalid active run snapshot")
)

// SaveSnapshot replaces the active-run snapshot.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	if snap.Phase != SnapshotFocus && snap.Phase != SnapshotBreak {
		return fmt.Errorf("save snapshot: unknown phase %q", snap.Phase)
	}
	pairs := []Setting{
		{KeyActiveEndDate, formatInstant(snap.EndAt)},
		{KeyActiveColorHue, strconv.FormatFloat(snap.ColorHue, 'f', -1, 64)},
		{KeyActiveDurationSeconds, formatSeconds(snap.Duration)},
		{KeyActiveSelectedIndex, strconv.Itoa(snap.SelectedIndex)},
		{KeyBreakEndDate, formatInstant(snap.BreakEndAt)},
		{KeyBreakDurationSeconds, formatSeconds(snap.BreakDuration)},
		{KeyActivePhase, snap.Phase},
		{KeyActiveSchemaVersion, strconv.Itoa(SnapshotSchemaVersion)},
	}
	if err := s.SetSettings(pairs); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the active-run snapshot. It returns ErrNoSnapshot when
// none is stored and ErrInvalidSnapshot when it cannot be decoded.
func (s *Store) LoadSnapshot() (Snapshot, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(snapshotKeys)), ",")
	args := make([]any, len(snapshotKeys))
	for i, k := range snapshotKeys {
		args[i] = k
	}

	rows, err := s.db.Query(`SELECT key, value FROM settings WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(snapshotKeys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if len(values) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	return decodeSnapshot(values)
}

// ClearSnapshot removes every snapshot key.
func (s *Store) ClearSnapshot() error {
	if err := s.DeleteSettings(snapshotKeys...); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func decodeSnapshot(values map[string]string) (Snapshot, error) {
	for _, k := range snapshotKeys {
		if _, ok := values[k]; !ok {
			return Snapshot{}, fmt.Errorf("%w: missing %s", ErrInvalidSnapshot, k)
		}
	}

	version, err := strconv.Atoi(values[KeyActiveSchemaVersion])
	if err != nil || version != SnapshotSchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: schema version %q", ErrInvalidSnapshot, values[KeyActiveSchemaVersion])
	}

	var snap Snapshot
	snap.Phase = values[KeyActivePhase]
	if snap.Phase != SnapshotFocus && snap.Phase != SnapshotBreak {
		return Snapshot{}, fmt.Errorf("%w: phase %q", ErrInvalidSnapshot, snap.Phase)
	}
	if snap.EndAt, err = parseInstant(values[KeyActiveEndDate]); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, KeyActiveEndDate, err)
	}
	if snap.BreakEndAt, err = parseInstant(values[KeyBreakEndDate]); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, KeyBreakEndDate, err)
	}
	if snap.ColorHue, err = strconv.ParseFloat(values[KeyActiveColorHue], 64); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, KeyActiveColorHue, err)
	}
	if math.IsNaN(snap.ColorHue) || snap.ColorHue < 0 || snap.ColorHue >= 1 {
		return Snapshot{}, fmt.Errorf("%w: %s out of range: %v", ErrInvalidSnapshot, KeyActiveColorHue, snap.ColorHue)
	}
	if snap.Duration, err = parseSeconds(values[KeyActiveDurationSeconds]); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, KeyActiveDurationSeconds, err)
	}
	if snap.BreakDuration, err = parseSeconds(values[KeyBreakDurationSeconds]); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, KeyBreakDurationSeconds, err)
	}
	if snap.SelectedIndex, err = strconv.Atoi(values[KeyActiveSelectedIndex]); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, KeyActiveSelectedIndex, err)
	}
	return snap, nil
}

// Zero instants are stored as empty strings.
func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseInstant(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func parseSeconds(v string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
