package localstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clara/maestro/internal/library"
	"github.com/clara/maestro/internal/util"
)

// CreateRecording inserts a recording, minting a fresh id
func (s *Store) CreateRecording(fields *library.RecordingFields) (*library.Recording, error) {
	id := uuid.NewString()

	_, err := s.db.Exec(`
		INSERT INTO recordings (id, composer_id, title, performer, duration, year, file_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, fields.ComposerID, fields.Title, fields.Performer, fields.Duration, fields.Year, fields.File.Value)

	if err != nil {
		return nil, fmt.Errorf("failed to insert recording: %w", err)
	}

	return s.GetRecording(id)
}

// GetRecording retrieves a recording by id
func (s *Store) GetRecording(id string) (*library.Recording, error) {
	r := &library.Recording{}
	var filePath string

	err := s.db.QueryRow(`
		SELECT id, composer_id, title, performer, duration, year, file_path
		FROM recordings WHERE id = ?
	`, id).Scan(&r.ID, &r.ComposerID, &r.Title, &r.Performer, &r.Duration, &r.Year, &filePath)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recording %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	r.File = library.LocalRef(filePath)
	return r, nil
}

// ListRecordingsByComposer retrieves a composer's recordings in insertion order
func (s *Store) ListRecordingsByComposer(composerID string) ([]library.Recording, error) {
	rows, err := s.db.Query(`
		SELECT id, composer_id, title, performer, duration, year, file_path
		FROM recordings WHERE composer_id = ?
		ORDER BY created_at, id
	`, composerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recordings []library.Recording
	for rows.Next() {
		var r library.Recording
		var filePath string
		if err := rows.Scan(&r.ID, &r.ComposerID, &r.Title, &r.Performer, &r.Duration, &r.Year, &filePath); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		r.File = library.LocalRef(filePath)
		recordings = append(recordings, r)
	}

	return recordings, rows.Err()
}

// UpdateRecording applies the non-nil fields and returns the re-read row
func (s *Store) UpdateRecording(id string, update *library.RecordingUpdate) (*library.Recording, error) {
	setClauses := ""
	args := []interface{}{}

	appendSet := func(clause string, value interface{}) {
		if setClauses != "" {
			setClauses += ", "
		}
		setClauses += clause
		args = append(args, value)
	}

	if update.Title != nil {
		appendSet("title = ?", *update.Title)
	}
	if update.Performer != nil {
		appendSet("performer = ?", *update.Performer)
	}
	if update.Duration != nil {
		appendSet("duration = ?", *update.Duration)
	}
	if update.Year != nil {
		appendSet("year = ?", *update.Year)
	}
	if update.File != nil {
		appendSet("file_path = ?", update.File.Value)
	}

	if setClauses == "" {
		return s.GetRecording(id)
	}

	appendSet("updated_at = ?", time.Now())
	args = append(args, id)

	result, err := s.db.Exec("UPDATE recordings SET "+setClauses+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update recording: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("recording %s: %w", id, util.ErrNotFound)
	}

	return s.GetRecording(id)
}

// DeleteRecording removes a recording
func (s *Store) DeleteRecording(id string) error {
	result, err := s.db.Exec("DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("recording %s: %w", id, util.ErrNotFound)
	}

	return nil
}
