// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestCreateElection(t *testing.T) {
	future := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	tests := []struct {
		name           string
		request        interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, env *testEnv, resp *models.CreateElectionResponse)
	}{
		{
			name: "candidate election with day duration",
			request: models.CreateElectionRequest{
				Name:     "Board seat",
				Method:   models.MethodIRV,
				Options:  []string{"Ada", "Grace", "Edsger"},
				Duration: "1d2h",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, env *testEnv, resp *models.CreateElectionResponse) {
				if resp.ElectionID == "" || resp.AdminKey == "" {
					t.Fatal("Expected election_id and admin_key")
				}
				if err := auth.ValidateAdminKey(resp.ElectionID, resp.AdminKey, env.cfg.AdminKeySalt); err != nil {
					t.Errorf("Admin key does not validate: %v", err)
				}
				remaining := time.Until(resp.EndsAt)
				if remaining < 25*time.Hour || remaining > 26*time.Hour {
					t.Errorf("Expected deadline about 26h away, got %s", remaining)
				}
				if !env.manager.Scheduled(resp.ElectionID) {
					t.Error("Expected a deadline timer to be armed")
				}
			},
		},
		{
			name: "proposition gets default options",
			request: models.CreateElectionRequest{
				Name:   "Adopt the charter?",
				Kind:   models.KindProposition,
				Method: models.MethodPlurality,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, env *testEnv, resp *models.CreateElectionResponse) {
				e, err := env.store.GetElection(context.Background(), resp.ElectionID)
				if err != nil {
					t.Fatalf("Failed to load election: %v", err)
				}
				if len(e.Options) != 3 || e.Options[0] != "Yes" {
					t.Errorf("Expected Yes/No/Abstain, got %v", e.Options)
				}
				if time.Until(e.EndsAt) > env.cfg.DefaultDuration {
					t.Errorf("Expected the default duration, ends at %v", e.EndsAt)
				}
			},
		},
		{
			name: "explicit end time",
			request: models.CreateElectionRequest{
				Name:    "Mascot",
				Method:  models.MethodApproval,
				Options: []string{"Gopher", "Crab"},
				EndsAt:  &future,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, env *testEnv, resp *models.CreateElectionResponse) {
				if !resp.EndsAt.Equal(future) {
					t.Errorf("Expected ends_at %v, got %v", future, resp.EndsAt)
				}
			},
		},
		{
			name: "single option",
			request: models.CreateElectionRequest{
				Name:    "Lonely",
				Method:  models.MethodPlurality,
				Options: []string{"Only"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unsupported method",
			request: models.CreateElectionRequest{
				Name:    "Borda",
				Method:  "borda",
				Options: []string{"A", "B"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "threshold out of range",
			request: models.CreateElectionRequest{
				Name:      "Runoff",
				Method:    models.MethodTwoRound,
				Options:   []string{"A", "B"},
				Threshold: 1.5,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad duration",
			request: models.CreateElectionRequest{
				Name:     "Soon",
				Method:   models.MethodPlurality,
				Options:  []string{"A", "B"},
				Duration: "tomorrow",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			request:        "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			req := testutil.MakeRequest("POST", "/elections", tt.request, nil)
			w := httptest.NewRecorder()
			env.elections.CreateElection(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil && w.Code == http.StatusCreated {
				var resp models.CreateElectionResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, env, &resp)
			}
		})
	}
}

func TestGetElection(t *testing.T) {
	env := newTestEnv(t)
	electionID, _ := env.createElection(t, models.MethodPlurality, "A", "B")

	req := httptest.NewRequest("GET", "/elections/"+electionID, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	env.elections.GetElection(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var e models.Election
	testutil.AssertJSON(t, w, &e)
	if e.ID != electionID || e.Closed || e.Result != nil {
		t.Errorf("Unexpected election: %+v", e)
	}

	req = httptest.NewRequest("GET", "/elections/missing", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	env.elections.GetElection(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCloseElection(t *testing.T) {
	env := newTestEnv(t)
	electionID, adminKey := env.createElection(t, models.MethodPlurality, "A", "B", "C")

	env.cast(t, electionID, "alice", "A")
	env.cast(t, electionID, "bob", "A")
	env.cast(t, electionID, "carol", "B")

	w := env.close(t, electionID, "wrong-key")
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = env.close(t, electionID, adminKey)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CloseElectionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Result.FirstWinner() != "A" {
		t.Errorf("Expected winner A, got %v", resp.Result.Winner)
	}
	if resp.Result.Counts["A"] != 2 || resp.Result.Counts["B"] != 1 || resp.Result.Counts["C"] != 0 {
		t.Errorf("Unexpected counts: %v", resp.Result.Counts)
	}
	if resp.ClosedAt.IsZero() {
		t.Error("Expected closed_at to be set")
	}
	if env.manager.Scheduled(electionID) {
		t.Error("Expected the deadline timer to be cancelled")
	}

	// Closing twice conflicts and does not republish
	w = env.close(t, electionID, adminKey)
	testutil.AssertStatus(t, w, http.StatusConflict)
	if env.publisher.Count() != 1 {
		t.Errorf("Expected exactly 1 publish, got %d", env.publisher.Count())
	}
}

func TestCloseUnknownElection(t *testing.T) {
	env := newTestEnv(t)
	adminKey := auth.GenerateAdminKey("missing", env.cfg.AdminKeySalt)

	w := env.close(t, "missing", adminKey)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
