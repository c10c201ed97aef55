// Package remotestore is the PostgreSQL side of the library. It holds the
// remote copy of the composer/work/recording hierarchy; asset reference
// columns contain durable object-storage URLs.
package remotestore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Store is the remote library database.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and brings the schema up to date.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS composers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  period TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  sheet_music_count INTEGER NOT NULL DEFAULT 0,
  recording_count INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_composers_name ON composers(name);

CREATE TABLE IF NOT EXISTS works (
  id TEXT PRIMARY KEY,
  composer_id TEXT NOT NULL REFERENCES composers(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  edition TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  file_url TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_works_composer_id ON works(composer_id);

CREATE TABLE IF NOT EXISTS recordings (
  id TEXT PRIMARY KEY,
  composer_id TEXT NOT NULL REFERENCES composers(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  performer TEXT NOT NULL DEFAULT '',
  duration TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  file_url TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_recordings_composer_id ON recordings(composer_id);
`
