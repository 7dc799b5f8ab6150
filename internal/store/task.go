package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tasched/tasched/pkg/taschlib"
)

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// SaveTask inserts or replaces a task.
func (s *Store) SaveTask(t *taschlib.Task) error {
	return s.saveTask(s.db, t)
}

func (s *Store) saveTask(q querier, t *taschlib.Task) error {
	warnings, _ := json.Marshal(t.Warnings)
	sound, _ := json.Marshal(t.Sound)
	display, _ := json.Marshal(t.Display)
	now := s.timestamp()
	_, err := q.Exec(`
        INSERT INTO tasks (id, title, duration_seconds, warning_points_seconds, sound_profile, display_options, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            duration_seconds = excluded.duration_seconds,
            warning_points_seconds = excluded.warning_points_seconds,
            sound_profile = excluded.sound_profile,
            display_options = excluded.display_options,
            updated_at = excluded.updated_at
    `, t.ID, t.Title, t.Duration, string(warnings), string(sound), string(display), now, now)
	if err != nil {
		return fmt.Errorf("error: failed to save task %s: %w", t.ID, err)
	}
	return nil
}

// GetTask loads a task by ID.
func (s *Store) GetTask(id string) (*taschlib.Task, error) {
	return s.getTask(s.db, id)
}

func (s *Store) getTask(q querier, id string) (*taschlib.Task, error) {
	var (
		t                        taschlib.Task
		warnings, sound, display sql.NullString
	)
	err := q.QueryRow(`
        SELECT id, title, duration_seconds, warning_points_seconds, sound_profile, display_options
        FROM tasks WHERE id = ?
    `, id).Scan(&t.ID, &t.Title, &t.Duration, &warnings, &sound, &display)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error: failed to load task %s: %w", id, err)
	}
	if err := unmarshalColumn(warnings, &t.Warnings); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(sound, &t.Sound); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(display, &t.Display); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task. Schedules still referring to it fail to load
// until they are saved again.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error: failed to delete task %s: %w", id, err)
	}
	return expectRow(res, "task", id)
}

func unmarshalColumn(v sql.NullString, dst any) error {
	if !v.Valid || v.String == "" || v.String == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(v.String), dst); err != nil {
		return fmt.Errorf("error: corrupt column value %q: %w", v.String, err)
	}
	return nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
