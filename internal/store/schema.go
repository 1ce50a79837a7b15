package store

// Schema contains the complete DDL for the layout database.
const Schema = `
-- Profiles: named saved arrangements
CREATE TABLE IF NOT EXISTS profiles (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Monitors: persisted monitor records, one row per monitor per profile
CREATE TABLE IF NOT EXISTS monitors (
    id            TEXT PRIMARY KEY,
    profile_id    TEXT NOT NULL,
    display_id    INTEGER NOT NULL DEFAULT 0,
    name          TEXT NOT NULL,
    resolution    TEXT NOT NULL,
    orientation   TEXT NOT NULL DEFAULT 'Landscape',
    is_primary    INTEGER NOT NULL DEFAULT 0,
    scale_factor  REAL NOT NULL DEFAULT 1.0,
    x             INTEGER NOT NULL,
    y             INTEGER NOT NULL,
    width         INTEGER NOT NULL,
    height        INTEGER NOT NULL,
    display_index INTEGER NOT NULL,
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL,
    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_monitors_profile ON monitors(profile_id, display_index);
`
