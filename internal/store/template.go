package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschlib"
)

// SaveTemplate snapshots sc under name. Later edits to sc do not change
// the template.
func (s *Store) SaveTemplate(name, description string, sc *taschlib.Schedule) (*common.TemplateSummary, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	now := s.now()
	_, err = s.db.Exec(`
        INSERT INTO templates (id, name, description, schedule_data, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, id, name, description, string(data), formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("error: failed to save template %s: %w", name, err)
	}
	return &common.TemplateSummary{
		ID:          id,
		Name:        name,
		Description: description,
		TaskCount:   len(sc.Tasks),
		CreatedAt:   now.UTC(),
	}, nil
}

// GetTemplate returns the schedule stored in a template.
func (s *Store) GetTemplate(id string) (*taschlib.Schedule, error) {
	var data sql.NullString
	err := s.db.QueryRow(`SELECT schedule_data FROM templates WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error: failed to load template %s: %w", id, err)
	}
	var sc taschlib.Schedule
	if err := unmarshalColumn(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListTemplates returns template summaries, newest first.
func (s *Store) ListTemplates() ([]*common.TemplateSummary, error) {
	rows, err := s.db.Query(`
        SELECT id, name, description, schedule_data, created_at
        FROM templates ORDER BY created_at DESC, name ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []*common.TemplateSummary
	for rows.Next() {
		var (
			t                   common.TemplateSummary
			desc, data, created sql.NullString
			sc                  taschlib.Schedule
		)
		if err := rows.Scan(&t.ID, &t.Name, &desc, &data, &created); err != nil {
			return nil, fmt.Errorf("error: failed to scan template row: %w", err)
		}
		if err := unmarshalColumn(data, &sc); err != nil {
			return nil, err
		}
		t.Description = desc.String
		t.TaskCount = len(sc.Tasks)
		t.CreatedAt = parseTime(created)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate template rows: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteTemplate(id string) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error: failed to delete template %s: %w", id, err)
	}
	return expectRow(res, "template", id)
}

// ApplyTemplate creates and stores a new schedule from a template. Every
// task gets a fresh ID so the new schedule is independent of others made
// from the same template. An empty name keeps the template's. Auto-start
// settings are not carried over.
func (s *Store) ApplyTemplate(templateID, name string) (*taschlib.Schedule, error) {
	sc, err := s.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	sc.ID = uuid.NewString()
	sc.AutoStart = false
	sc.StartAt = nil
	sc.Cron = ""
	if name != "" {
		sc.Name = name
	}
	for i := range sc.Tasks {
		sc.Tasks[i].ID = uuid.NewString()
	}
	if err := s.SaveSchedule(sc); err != nil {
		return nil, err
	}
	return sc, nil
}
