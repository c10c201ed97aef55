package localstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clara/maestro/internal/library"
	"github.com/clara/maestro/internal/util"
)

// CreateComposer inserts a composer, minting a fresh id
func (s *Store) CreateComposer(fields *library.ComposerFields) (*library.Composer, error) {
	id := uuid.NewString()

	_, err := s.db.Exec(`
		INSERT INTO composers (id, name, period, image_path)
		VALUES (?, ?, ?, ?)
	`, id, fields.Name, fields.Period, fields.Image.Value)

	if err != nil {
		return nil, fmt.Errorf("failed to insert composer: %w", err)
	}

	return s.GetComposer(id)
}

// GetComposer retrieves a composer without its children
func (s *Store) GetComposer(id string) (*library.Composer, error) {
	c := &library.Composer{}
	var imagePath string

	err := s.db.QueryRow(`
		SELECT id, name, period, image_path
		FROM composers WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Period, &imagePath)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("composer %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get composer: %w", err)
	}

	c.Image = library.LocalRef(imagePath)
	return c, nil
}

// GetComposerWithChildren retrieves a composer with its works and recordings
func (s *Store) GetComposerWithChildren(id string) (*library.Composer, error) {
	c, err := s.GetComposer(id)
	if err != nil {
		return nil, err
	}

	c.Works, err = s.ListWorksByComposer(id)
	if err != nil {
		return nil, err
	}

	c.Recordings, err = s.ListRecordingsByComposer(id)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ListComposers retrieves all composers ordered by name
func (s *Store) ListComposers() ([]*library.Composer, error) {
	rows, err := s.db.Query(`
		SELECT id, name, period, image_path
		FROM composers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query composers: %w", err)
	}
	defer rows.Close()

	var composers []*library.Composer
	for rows.Next() {
		c := &library.Composer{}
		var imagePath string
		if err := rows.Scan(&c.ID, &c.Name, &c.Period, &imagePath); err != nil {
			return nil, fmt.Errorf("failed to scan composer: %w", err)
		}
		c.Image = library.LocalRef(imagePath)
		composers = append(composers, c)
	}

	return composers, rows.Err()
}

// UpdateComposer applies the non-nil fields and returns the re-read row
func (s *Store) UpdateComposer(id string, update *library.ComposerUpdate) (*library.Composer, error) {
	setClauses := ""
	args := []interface{}{}

	appendSet := func(clause string, value interface{}) {
		if setClauses != "" {
			setClauses += ", "
		}
		setClauses += clause
		args = append(args, value)
	}

	if update.Name != nil {
		appendSet("name = ?", *update.Name)
	}
	if update.Period != nil {
		appendSet("period = ?", *update.Period)
	}
	if update.Image != nil {
		appendSet("image_path = ?", update.Image.Value)
	}

	if setClauses == "" {
		return s.GetComposer(id)
	}

	appendSet("updated_at = ?", time.Now())
	args = append(args, id)

	result, err := s.db.Exec("UPDATE composers SET "+setClauses+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update composer: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("composer %s: %w", id, util.ErrNotFound)
	}

	return s.GetComposer(id)
}

// DeleteComposer removes a composer; works and recordings cascade
func (s *Store) DeleteComposer(id string) error {
	result, err := s.db.Exec("DELETE FROM composers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete composer: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("composer %s: %w", id, util.ErrNotFound)
	}

	return nil
}
