package taschlib

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ReadScheduleFile loads a schedule exported with WriteScheduleFile or
// written by hand. Missing IDs are filled in; the result is validated.
func ReadScheduleFile(fsys afero.Fs, path string) (*Schedule, error) {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	s := &Schedule{AutoAdvance: DefaultAutoAdvance}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse schedule %s: %w", path, err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == "" {
			s.Tasks[i].ID = uuid.NewString()
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteScheduleFile stores s as indented JSON.
func WriteScheduleFile(fsys afero.Fs, path string, s *Schedule) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, b, 0644)
}
