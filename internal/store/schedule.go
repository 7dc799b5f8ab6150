package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschlib"
)

// SaveSchedule stores the schedule and all of its tasks in one transaction.
func (s *Store) SaveSchedule(sc *taschlib.Schedule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldIDs []string
	var old sql.NullString
	err = tx.QueryRow(`SELECT task_ids FROM schedules WHERE id = ?`, sc.ID).Scan(&old)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error: failed to load schedule %s: %w", sc.ID, err)
	}
	if err := unmarshalColumn(old, &oldIDs); err != nil {
		return fmt.Errorf("error: failed to decode task ids of %s: %w", sc.ID, err)
	}

	ids := make([]string, 0, len(sc.Tasks))
	for i := range sc.Tasks {
		if err := s.saveTask(tx, &sc.Tasks[i]); err != nil {
			return err
		}
		ids = append(ids, sc.Tasks[i].ID)
	}
	taskIDs, _ := json.Marshal(ids)
	var startAt sql.NullString
	if sc.StartAt != nil {
		startAt = sql.NullString{String: formatTime(*sc.StartAt), Valid: true}
	}
	now := s.timestamp()
	_, err = tx.Exec(`
        INSERT INTO schedules (id, name, task_ids, auto_start, auto_advance, gap_between_tasks, start_at, cron, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            task_ids = excluded.task_ids,
            auto_start = excluded.auto_start,
            auto_advance = excluded.auto_advance,
            gap_between_tasks = excluded.gap_between_tasks,
            start_at = excluded.start_at,
            cron = excluded.cron,
            updated_at = excluded.updated_at
    `, sc.ID, sc.Name, string(taskIDs), boolInt(sc.AutoStart), boolInt(sc.AutoAdvance), sc.Gap, startAt, sc.Cron, now, now)
	if err != nil {
		return fmt.Errorf("error: failed to save schedule %s: %w", sc.ID, err)
	}
	dropped := oldIDs[:0]
	for _, id := range oldIDs {
		if !slices.Contains(ids, id) {
			dropped = append(dropped, id)
		}
	}
	if err := pruneTasks(tx, dropped); err != nil {
		return err
	}
	return tx.Commit()
}

// pruneTasks deletes the given task rows unless some schedule still lists
// them.
func pruneTasks(tx *sql.Tx, ids []string) error {
	for _, id := range ids {
		var n int
		pattern := `%"` + id + `"%`
		if err := tx.QueryRow(`SELECT COUNT(*) FROM schedules WHERE task_ids LIKE ?`, pattern).Scan(&n); err != nil {
			return fmt.Errorf("error: failed to check task usage: %w", err)
		}
		if n > 0 {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("error: failed to delete task %s: %w", id, err)
		}
	}
	return nil
}

// GetSchedule loads a schedule with its tasks in order.
func (s *Store) GetSchedule(id string) (*taschlib.Schedule, error) {
	row := s.db.QueryRow(`
        SELECT id, name, task_ids, auto_start, auto_advance, gap_between_tasks, start_at, cron, updated_at
        FROM schedules WHERE id = ?
    `, id)
	sc, ids, _, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error: failed to load schedule %s: %w", id, err)
	}
	for _, tid := range ids {
		t, err := s.getTask(s.db, tid)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", id, err)
		}
		sc.Tasks = append(sc.Tasks, *t)
	}
	return sc, nil
}

// ListSchedules returns summaries ordered by name.
func (s *Store) ListSchedules() ([]*common.ScheduleSummary, error) {
	rows, err := s.db.Query(`
        SELECT id, name, task_ids, auto_start, auto_advance, gap_between_tasks, start_at, cron, updated_at
        FROM schedules ORDER BY name ASC, id ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query schedules: %w", err)
	}
	defer rows.Close()

	type pending struct {
		sum *common.ScheduleSummary
		ids []string
		gap int
	}
	var list []pending
	for rows.Next() {
		sc, ids, updated, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("error: failed to scan schedule row: %w", err)
		}
		list = append(list, pending{
			sum: &common.ScheduleSummary{
				ID:        sc.ID,
				Name:      sc.Name,
				TaskCount: len(ids),
				AutoStart: sc.AutoStart,
				StartAt:   sc.StartAt,
				Cron:      sc.Cron,
				UpdatedAt: updated,
			},
			ids: ids,
			gap: sc.Gap,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate schedule rows: %w", err)
	}
	rows.Close()

	// Totals need the task rows, read once the schedule cursor is closed.
	out := make([]*common.ScheduleSummary, 0, len(list))
	for _, p := range list {
		total := 0
		if len(p.ids) > 1 {
			total = (len(p.ids) - 1) * p.gap
		}
		for _, tid := range p.ids {
			var d int
			err := s.db.QueryRow(`SELECT duration_seconds FROM tasks WHERE id = ?`, tid).Scan(&d)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("error: failed to load task %s: %w", tid, err)
			}
			total += d
		}
		p.sum.TotalSeconds = total
		out = append(out, p.sum)
	}
	return out, nil
}

// DeleteSchedule removes the schedule row. Its tasks are kept only when
// another schedule still lists them.
func (s *Store) DeleteSchedule(id string) error {
	sc, err := s.GetSchedule(id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	res, err := tx.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error: failed to delete schedule %s: %w", id, err)
	}
	if err := expectRow(res, "schedule", id); err != nil {
		return err
	}
	if sc != nil {
		ids := make([]string, 0, len(sc.Tasks))
		for _, t := range sc.Tasks {
			ids = append(ids, t.ID)
		}
		if err := pruneTasks(tx, ids); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row scanner) (*taschlib.Schedule, []string, time.Time, error) {
	var (
		sc                     taschlib.Schedule
		taskIDs, startAt, cron sql.NullString
		updated                sql.NullString
		autoStart, autoAdvance int
	)
	if err := row.Scan(&sc.ID, &sc.Name, &taskIDs, &autoStart, &autoAdvance, &sc.Gap, &startAt, &cron, &updated); err != nil {
		return nil, nil, time.Time{}, err
	}
	var ids []string
	if err := unmarshalColumn(taskIDs, &ids); err != nil {
		return nil, nil, time.Time{}, err
	}
	sc.AutoStart = autoStart != 0
	sc.AutoAdvance = autoAdvance != 0
	sc.Cron = cron.String
	if startAt.Valid && startAt.String != "" {
		at := parseTime(startAt)
		sc.StartAt = &at
	}
	return &sc, ids, parseTime(updated), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
