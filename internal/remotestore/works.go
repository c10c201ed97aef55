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

// CreateWork inserts a work, minting a fresh id.
func (s *Store) CreateWork(ctx context.Context, fields *library.WorkFields) (*library.Work, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO works (id, composer_id, title, edition, year, file_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, fields.ComposerID, fields.Title, fields.Edition, fields.Year, fields.File.Value)

	if err != nil {
		return nil, fmt.Errorf("insert work: %w", err)
	}

	return s.GetWork(ctx, id)
}

// GetWork retrieves a work by id.
func (s *Store) GetWork(ctx context.Context, id string) (*library.Work, error) {
	w := &library.Work{}
	var fileURL string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, composer_id, title, edition, year, file_url
		FROM works WHERE id = $1
	`, id).Scan(&w.ID, &w.ComposerID, &w.Title, &w.Edition, &w.Year, &fileURL)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("work %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get work: %w", err)
	}

	w.File = library.RemoteRef(fileURL)
	return w, nil
}

// ListWorksByComposer retrieves a composer's works in insertion order.
func (s *Store) ListWorksByComposer(ctx context.Context, composerID string) ([]library.Work, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, composer_id, title, edition, year, file_url
		FROM works WHERE composer_id = $1
		ORDER BY created_at, id
	`, composerID)
	if err != nil {
		return nil, fmt.Errorf("query works: %w", err)
	}
	defer rows.Close()

	var works []library.Work
	for rows.Next() {
		var w library.Work
		var fileURL string
		if err := rows.Scan(&w.ID, &w.ComposerID, &w.Title, &w.Edition, &w.Year, &fileURL); err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		w.File = library.RemoteRef(fileURL)
		works = append(works, w)
	}

	return works, rows.Err()
}

// UpdateWork applies the non-nil fields and returns the re-read row.
func (s *Store) UpdateWork(ctx context.Context, id string, update *library.WorkUpdate) (*library.Work, error) {
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
	if update.Edition != nil {
		appendSet("edition", *update.Edition)
	}
	if update.Year != nil {
		appendSet("year", *update.Year)
	}
	if update.File != nil {
		appendSet("file_url", update.File.Value)
	}

	if setClauses == "" {
		return s.GetWork(ctx, id)
	}

	appendSet("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE works SET %s WHERE id = $%d", setClauses, len(args))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update work: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("work %s: %w", id, util.ErrNotFound)
	}

	return s.GetWork(ctx, id)
}

// DeleteWork removes a work.
func (s *Store) DeleteWork(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM works WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete work: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("work %s: %w", id, util.ErrNotFound)
	}

	return nil
}
