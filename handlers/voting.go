// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/lifecycle"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// VoterHeader carries the caller's raw identity. It is fingerprinted before storage.
const VoterHeader = "X-Voter-ID"

type VotingHandler struct {
	manager *lifecycle.Manager
	cfg     cliparse.Config
}

func NewVotingHandler(manager *lifecycle.Manager, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{manager: manager, cfg: cfg}
}

// CastBallot handles POST /elections/{id}/ballots
func (h *VotingHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	voterID := r.Header.Get(VoterHeader)
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, VoterHeader+" header required")
		return
	}

	var req models.CastBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ballot, err := h.manager.Cast(r.Context(), lifecycle.CastRequest{
		ElectionID: electionID,
		VoterID:    voterID,
		Options:    req.Options,
		Roles:      req.Roles,
	})
	if err != nil {
		writeError(w, err, "cast ballot")
		return
	}

	isUpdate := ballot.Revision > 1
	message := "Ballot submitted successfully"
	if isUpdate {
		message = "Ballot updated successfully"
	}

	slog.Info("ballot submitted", "election_id", electionID, "ballot_id", ballot.ID, "is_update", isUpdate)

	middleware.JSONResponse(w, http.StatusCreated, models.CastBallotResponse{
		BallotID: ballot.ID,
		Message:  message,
	})
}

// GetMyBallot handles GET /elections/{id}/my-ballot
func (h *VotingHandler) GetMyBallot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	voterID := r.Header.Get(VoterHeader)
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, VoterHeader+" header required")
		return
	}

	ballot, err := h.manager.MyBallot(r.Context(), electionID, voterID)
	if errors.Is(err, models.ErrBallotNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "You have not voted in this election")
		return
	}
	if err != nil {
		writeError(w, err, "load ballot")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}
