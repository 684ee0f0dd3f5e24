// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Times are unix milliseconds and structured values are JSON text, so the
// same DDL and queries run on both sqlite and postgres.
const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL CHECK (kind IN ('candidate', 'proposition')),
    method TEXT NOT NULL,
    options TEXT NOT NULL,
    threshold DOUBLE PRECISION NOT NULL,
    role_weights TEXT NOT NULL DEFAULT '[]',
    created_at BIGINT NOT NULL,
    ends_at BIGINT NOT NULL,
    closed INTEGER NOT NULL DEFAULT 0,
    closed_at BIGINT,
    result TEXT,
    CHECK ((closed = 0 AND result IS NULL) OR (closed = 1 AND result IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_election_closed ON election(closed);

-- Ballots, one per voter fingerprint per election
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_fingerprint TEXT NOT NULL,
    choice TEXT NOT NULL,
    revision INTEGER NOT NULL DEFAULT 1,
    created_at BIGINT NOT NULL,
    UNIQUE (election_id, voter_fingerprint)
);

CREATE INDEX IF NOT EXISTS idx_ballot_election_id ON ballot(election_id);
`
