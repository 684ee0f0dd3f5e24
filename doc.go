// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Elect API server.

Quickly Elect runs time-boxed elections. Each election picks one counting
method (fptp, approval, two-round, irv, stv, weighted) and is finalized
exactly once, either when its deadline timer fires or when an admin
closes it early. The final result is published to the log and, when
configured, to a webhook.

# Starting the Server

The server reads a .env file if present, then environment variables or
CLI flags:

	VOTE_SECRET=... ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - VOTE_SECRET (--vote-secret): HMAC key for voter fingerprints
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: quickly-elect.db)
  - PUBLISH_WEBHOOK_URL (--webhook): Receives final results
  - DEFAULT_DURATION (--duration): Election length when none is given (default: 1h)
  - DEFAULT_THRESHOLD (--threshold): Two-round first-round majority (default: 0.5)

# Startup

On boot the lifecycle manager re-arms a timer for every open election and
finalizes any whose deadline passed while the process was down.

# Architecture

  - handlers: HTTP request handlers (elections, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, request metrics, JSON helpers
  - lifecycle: Scheduling and exactly-once finalization
  - tally: Counting methods
  - publish: Result rendering and delivery
  - metrics: Prometheus collectors behind go-kit interfaces
  - models: Domain, request and response types
  - auth: Voter anonymization and admin keys
  - db: Schema and storage
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
