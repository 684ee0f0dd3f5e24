// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Elect API.

# Handler Types

Each handler is a struct holding the lifecycle manager and config:

  - ElectionHandler: create, inspect and close elections
  - VotingHandler: ballot casting and the caller's own ballot
  - ResultsHandler: sealed/live results and ballot counts

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(manager, cfg)

# Election Lifecycle

Elections are open from creation until their deadline or an admin close:

	POST /elections            → CreateElection (returns admin_key)
	GET  /elections/{id}       → GetElection
	POST /elections/{id}/close → CloseElection (tallies and publishes)

The deadline is given as "duration" ("1d2h30m", "90m") or "ends_at"
(RFC 3339); without either the configured default applies. Closing
requires the X-Admin-Key header.

# Voting Flow

	POST /elections/{id}/ballots   → CastBallot (create or replace)
	GET  /elections/{id}/my-ballot → GetMyBallot

Voter operations require the X-Voter-ID header. The id is turned into an
HMAC fingerprint before it reaches storage.

# Results

	GET /elections/{id}/results           → final result (403 while open)
	GET /elections/{id}/results?live=true → interim tally while open
	GET /elections/{id}/ballot-count      → number of ballots

# Errors

Validation problems answer 400, unknown elections 404, and anything done to a
closed election 409.
*/
package handlers
