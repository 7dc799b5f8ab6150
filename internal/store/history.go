package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tasched/tasched/common"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 100

// LogEvent appends one entry to the run history.
func (s *Store) LogEvent(e *common.HistoryEntry) error {
	var data sql.NullString
	if len(e.EventData) > 0 {
		data = sql.NullString{String: string(e.EventData), Valid: true}
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	res, err := s.db.Exec(`
        INSERT INTO run_history (run_id, schedule_id, schedule_name, event_type, event_data, timestamp)
        VALUES (?, ?, ?, ?, ?, ?)
    `, int64(e.RunID), e.ScheduleID, e.ScheduleName, e.EventType, data, formatTime(ts))
	if err != nil {
		return fmt.Errorf("error: failed to log event: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// History returns the latest entries, newest first, optionally for one
// schedule only.
func (s *Store) History(scheduleID string, limit int) ([]*common.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := `SELECT id, run_id, schedule_id, schedule_name, event_type, event_data, timestamp FROM run_history`
	args := []any{}
	if scheduleID != "" {
		query += ` WHERE schedule_id = ?`
		args = append(args, scheduleID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query run history: %w", err)
	}
	defer rows.Close()

	var out []*common.HistoryEntry
	for rows.Next() {
		var (
			e                          common.HistoryEntry
			runID                      int64
			schedID, name, data, stamp sql.NullString
		)
		if err := rows.Scan(&e.ID, &runID, &schedID, &name, &e.EventType, &data, &stamp); err != nil {
			return nil, fmt.Errorf("error: failed to scan run history row: %w", err)
		}
		e.RunID = uint64(runID)
		e.ScheduleID = schedID.String
		e.ScheduleName = name.String
		if data.Valid && data.String != "" {
			e.EventData = json.RawMessage(data.String)
		}
		e.Timestamp = parseTime(stamp)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate run history rows: %w", err)
	}
	return out, nil
}
