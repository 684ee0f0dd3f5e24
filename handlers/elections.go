// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/lifecycle"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

type ElectionHandler struct {
	manager *lifecycle.Manager
	cfg     cliparse.Config
}

func NewElectionHandler(manager *lifecycle.Manager, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{manager: manager, cfg: cfg}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Kind == "" {
		req.Kind = models.KindCandidate
	}
	if req.Threshold == 0 {
		req.Threshold = h.cfg.DefaultThreshold
	}

	now := time.Now()
	var endsAt time.Time
	if req.EndsAt != nil {
		endsAt = *req.EndsAt
	} else {
		deadline, err := ParseDeadline(req.Duration, now)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		endsAt = deadline
	}
	if endsAt.IsZero() {
		endsAt = now.Add(h.cfg.DefaultDuration)
	}

	election, err := h.manager.Create(r.Context(), models.Election{
		Name:        req.Name,
		Description: req.Description,
		Kind:        req.Kind,
		Method:      req.Method,
		Options:     req.Options,
		Threshold:   req.Threshold,
		RoleWeights: req.RoleWeights,
		CreatedAt:   now,
		EndsAt:      endsAt,
	})
	if err != nil {
		writeError(w, err, "create election")
		return
	}

	adminKey := auth.GenerateAdminKey(election.ID, h.cfg.AdminKeySalt)

	slog.Info("election opened", "election_id", election.ID, "method", election.Method)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: election.ID,
		AdminKey:   adminKey,
		EndsAt:     election.EndsAt,
	})
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, election)
}

// CloseElection handles POST /elections/{id}/close
func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(electionID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	result, err := h.manager.ForceClose(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "close election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CloseElectionResponse{
		ClosedAt: result.ComputedAt,
		Result:   result,
	})
}
