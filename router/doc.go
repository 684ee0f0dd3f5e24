// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Elect API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(manager, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Election management (close requires X-Admin-Key):

	POST /elections            - Create election
	GET  /elections/{id}       - Election definition and status
	POST /elections/{id}/close - Force close and tally

Voting (requires X-Voter-ID):

	POST /elections/{id}/ballots   - Cast or replace ballot
	GET  /elections/{id}/my-ballot - Caller's current ballot

Results:

	GET /elections/{id}/results      - Final results (closed, or ?live=true)
	GET /elections/{id}/ballot-count - Vote count

# Handler Initialization

All handlers share one lifecycle.Manager so the deadline scheduler,
admin close and ballot casting agree on exactly-once finalization:

	electionHandler := handlers.NewElectionHandler(manager, cfg)
	votingHandler := handlers.NewVotingHandler(manager, cfg)
	resultsHandler := handlers.NewResultsHandler(manager, cfg)
*/
package router
