package localstore

// Schema v1 - Initial library schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Composers own works and recordings
CREATE TABLE IF NOT EXISTS composers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  period TEXT NOT NULL DEFAULT '',
  image_path TEXT NOT NULL DEFAULT '',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_composers_name ON composers(name);

-- Sheet music
CREATE TABLE IF NOT EXISTS works (
  id TEXT PRIMARY KEY,
  composer_id TEXT NOT NULL REFERENCES composers(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  edition TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  file_path TEXT NOT NULL DEFAULT '',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_works_composer_id ON works(composer_id);

-- Recorded performances
CREATE TABLE IF NOT EXISTS recordings (
  id TEXT PRIMARY KEY,
  composer_id TEXT NOT NULL REFERENCES composers(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  performer TEXT NOT NULL DEFAULT '',
  duration TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  file_path TEXT NOT NULL DEFAULT '',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recordings_composer_id ON recordings(composer_id);
`
