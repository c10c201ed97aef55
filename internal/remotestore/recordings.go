package remotestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clara/maestro/internal/library"
	"github.com/clara/maestro/internal/util"
)

// CreateRecording inserts a recording, minting a fresh id.
func (s *Store) CreateRecording(ctx context.Context, fields *library.RecordingFields) (*library.Recording, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recordings (id, composer_id, title, performer, duration, year, file_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, fields.ComposerID, fields.Title, fields.Performer, fields.Duration, fields.Year, fields.File.Value)

	if err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}

	return s.GetRecording(ctx, id)
}

// GetRecording retrieves a recording by id.
func (s *Store) GetRecording(ctx context.Context, id string) (*library.Recording, error) {
	r := &library.Recording{}
	var fileURL string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, composer_id, title, performer, duration, year, file_url
		FROM recordings WHERE id = $1
	`, id).Scan(&r.ID, &r.ComposerID, &r.Title, &r.Performer, &r.Duration, &r.Year, &fileURL)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recording %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}

	r.File = library.RemoteRef(fileURL)
	return r, nil
}

// ListRecordingsByComposer retrieves a composer's recordings in insertion order.
func (s *Store) ListRecordingsByComposer(ctx context.Context, composerID string) ([]library.Recording, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, composer_id, title, performer, duration, year, file_url
		FROM recordings WHERE composer_id = $1
		ORDER BY created_at, id
	`, composerID)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var recordings []library.Recording
	for rows.Next() {
		var r library.Recording
		var fileURL string
		if err := rows.Scan(&r.ID, &r.ComposerID, &r.Title, &r.Performer, &r.Duration, &r.Year, &fileURL); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		r.File = library.RemoteRef(fileURL)
		recordings = append(recordings, r)
	}

	return recordings, rows.Err()
}

// UpdateRecording applies the non-nil fields and returns the re-read row.
func (s *Store) UpdateRecording(ctx context.Context, id string, update *library.RecordingUpdate) (*library.Recording, error) {
	setClauses := ""
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		if setClauses != "" {
			setClauses += ", "
		}
		args = append(args, value)
		setClauses += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Performer != nil {
		appendSet("performer", *update.Performer)
	}
	if update.Duration != nil {
		appendSet("duration", *update.Duration)
	}
	if update.Year != nil {
		appendSet("year", *update.Year)
	}
	if update.File != nil {
		appendSet("file_url", update.File.Value)
	}

	if setClauses == "" {
		return s.GetRecording(ctx, id)
	}

	appendSet("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE recordings SET %s WHERE id = $%d", setClauses, len(args))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update recording: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("recording %s: %w", id, util.ErrNotFound)
	}

	return s.GetRecording(ctx, id)
}

// DeleteRecording removes a recording.
func (s *Store) DeleteRecording(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM recordings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("recording %s: %w", id, util.ErrNotFound)
	}

	return nil
}
