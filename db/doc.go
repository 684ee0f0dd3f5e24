// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and election storage.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres" (lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

sqlite connections are limited to a single open connection and run with
foreign keys enabled.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: definition, deadline, closed flag and the final result as JSON
  - ballot: one row per voter fingerprint per election

	election 1──* ballot

Times are stored as unix milliseconds so the same queries run on both drivers.

# Store

Store implements the persistence operations used by the lifecycle manager.
Two of them carry the concurrency guarantees:

  - SaveBallot writes only while the election is open and replaces an
    earlier ballot with the same fingerprint
  - MarkClosed flips closed with a conditional update, so exactly one
    caller can close an election
*/
package db
