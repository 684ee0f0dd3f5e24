// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/lifecycle"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/publish"
)

type ResultsHandler struct {
	manager *lifecycle.Manager
	cfg     cliparse.Config
}

func NewResultsHandler(manager *lifecycle.Manager, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{manager: manager, cfg: cfg}
}

// GetResults handles GET /elections/{id}/results
// Returns 403 while the election is open unless ?live=true asks for an interim count.
// Returns the stored final result once closed.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	election, err := h.manager.Get(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "load election")
		return
	}

	live := r.URL.Query().Get("live") == "true"
	if !election.Closed && !live {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until the election is closed")
		return
	}

	var result models.TallyResult
	if election.Closed {
		result = *election.Result
	} else {
		result, err = h.manager.Preview(r.Context(), electionID)
		if err != nil {
			writeError(w, err, "compute results")
			return
		}
	}

	count, err := h.manager.CountBallots(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "count ballots")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Election:    election,
		Result:      result,
		BallotCount: count,
		Live:        !election.Closed,
		Summary:     publish.Render(election, result),
	})
}

// GetBallotCount handles GET /elections/{id}/ballot-count
// Returns the number of ballots submitted (visible even while open)
func (h *ResultsHandler) GetBallotCount(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	count, err := h.manager.CountBallots(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "count ballots")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]int{
		"ballot_count": count,
	})
}
