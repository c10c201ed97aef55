package localstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clara/maestro/internal/library"
	"github.com/clara/maestro/internal/util"
)

// CreateWork inserts a work, minting a fresh id
func (s *Store) CreateWork(fields *library.WorkFields) (*library.Work, error) {
	id := uuid.NewString()

	_, err := s.db.Exec(`
		INSERT INTO works (id, composer_id, title, edition, year, file_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, fields.ComposerID, fields.Title, fields.Edition, fields.Year, fields.File.Value)

	if err != nil {
		return nil, fmt.Errorf("failed to insert work: %w", err)
	}

	return s.GetWork(id)
}

// GetWork retrieves a work by id
func (s *Store) GetWork(id string) (*library.Work, error) {
	w := &library.Work{}
	var filePath string

	err := s.db.QueryRow(`
		SELECT id, composer_id, title, edition, year, file_path
		FROM works WHERE id = ?
	`, id).Scan(&w.ID, &w.ComposerID, &w.Title, &w.Edition, &w.Year, &filePath)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("work %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	w.File = library.LocalRef(filePath)
	return w, nil
}

// ListWorksByComposer retrieves a composer's works in insertion order
func (s *Store) ListWorksByComposer(composerID string) ([]library.Work, error) {
	rows, err := s.db.Query(`
		SELECT id, composer_id, title, edition, year, file_path
		FROM works WHERE composer_id = ?
		ORDER BY created_at, id
	`, composerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query works: %w", err)
	}
	defer rows.Close()

	var works []library.Work
	for rows.Next() {
		var w library.Work
		var filePath string
		if err := rows.Scan(&w.ID, &w.ComposerID, &w.Title, &w.Edition, &w.Year, &filePath); err != nil {
			return nil, fmt.Errorf("failed to scan work: %w", err)
		}
		w.File = library.LocalRef(filePath)
		works = append(works, w)
	}

	return works, rows.Err()
}

// UpdateWork applies the non-nil fields and returns the re-read row
func (s *Store) UpdateWork(id string, update *library.WorkUpdate) (*library.Work, error) {
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
	if update.Edition != nil {
		appendSet("edition = ?", *update.Edition)
	}
	if update.Year != nil {
		appendSet("year = ?", *update.Year)
	}
	if update.File != nil {
		appendSet("file_path = ?", update.File.Value)
	}

	if setClauses == "" {
		return s.GetWork(id)
	}

	appendSet("updated_at = ?", time.Now())
	args = append(args, id)

	result, err := s.db.Exec("UPDATE works SET "+setClauses+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update work: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("work %s: %w", id, util.ErrNotFound)
	}

	return s.GetWork(id)
}

// DeleteWork removes a work
func (s *Store) DeleteWork(id string) error {
	result, err := s.db.Exec("DELETE FROM works WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete work: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("work %s: %w", id, util.ErrNotFound)
	}

	return nil
}
