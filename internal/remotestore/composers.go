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

// CreateComposer inserts a composer, minting a fresh id.
func (s *Store) CreateComposer(ctx context.Context, fields *library.ComposerFields) (*library.Composer, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO composers (id, name, period, image_url, sheet_music_count, recording_count)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, fields.Name, fields.Period, fields.Image.Value, fields.SheetMusicCount, fields.RecordingCount)

	if err != nil {
		return nil, fmt.Errorf("insert composer: %w", err)
	}

	return s.GetComposer(ctx, id)
}

// GetComposer retrieves a composer without its children.
func (s *Store) GetComposer(ctx context.Context, id string) (*library.Composer, error) {
	c := &library.Composer{}
	var imageURL string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, period, image_url, sheet_music_count, recording_count
		FROM composers WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Period, &imageURL, &c.SheetMusicCount, &c.RecordingCount)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("composer %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get composer: %w", err)
	}

	c.Image = library.RemoteRef(imageURL)
	return c, nil
}

// GetComposerWithChildren retrieves a composer plus its works and recordings.
func (s *Store) GetComposerWithChildren(ctx context.Context, id string) (*library.Composer, error) {
	c, err := s.GetComposer(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Works, err = s.ListWorksByComposer(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Recordings, err = s.ListRecordingsByComposer(ctx, id)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ListComposers retrieves all composers ordered by name.
func (s *Store) ListComposers(ctx context.Context) ([]*library.Composer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, period, image_url, sheet_music_count, recording_count
		FROM composers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query composers: %w", err)
	}
	defer rows.Close()

	var composers []*library.Composer
	for rows.Next() {
		c := &library.Composer{}
		var imageURL string
		if err := rows.Scan(&c.ID, &c.Name, &c.Period, &imageURL, &c.SheetMusicCount, &c.RecordingCount); err != nil {
			return nil, fmt.Errorf("scan composer: %w", err)
		}
		c.Image = library.RemoteRef(imageURL)
		composers = append(composers, c)
	}

	return composers, rows.Err()
}

// UpdateComposer applies the non-nil fields and returns the re-read row.
func (s *Store) UpdateComposer(ctx context.Context, id string, update *library.ComposerUpdate) (*library.Composer, error) {
	setClauses := ""
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		if setClauses != "" {
			setClauses += ", "
		}
		args = append(args, value)
		setClauses += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if update.Name != nil {
		appendSet("name", *update.Name)
	}
	if update.Period != nil {
		appendSet("period", *update.Period)
	}
	if update.Image != nil {
		appendSet("image_url", update.Image.Value)
	}

	if setClauses == "" {
		return s.GetComposer(ctx, id)
	}

	appendSet("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE composers SET %s WHERE id = $%d", setClauses, len(args))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update composer: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("composer %s: %w", id, util.ErrNotFound)
	}

	return s.GetComposer(ctx, id)
}

// DeleteComposer removes a composer; works and recordings cascade.
func (s *Store) DeleteComposer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM composers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete composer: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("composer %s: %w", id, util.ErrNotFound)
	}

	return nil
}
