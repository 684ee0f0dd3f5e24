// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/lifecycle"
	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/middleware"
)

func NewRouter(manager *lifecycle.Manager, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(manager, cfg)
	votingHandler := handlers.NewVotingHandler(manager, cfg)
	resultsHandler := handlers.NewResultsHandler(manager, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	// Election management
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("POST /elections/{id}/close", middleware.WithLogging(electionHandler.CloseElection))

	// Voting (identified by X-Voter-ID)
	mux.HandleFunc("POST /elections/{id}/ballots", middleware.WithLogging(votingHandler.CastBallot))
	mux.HandleFunc("GET /elections/{id}/my-ballot", middleware.WithLogging(votingHandler.GetMyBallot))

	// Results (sealed until close unless ?live=true)
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /elections/{id}/ballot-count", middleware.WithLogging(resultsHandler.GetBallotCount))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-elect API v1"))
	})

	return mux
}
