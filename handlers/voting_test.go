// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func TestCastBallot(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		options        []string
		voter          string
		expectedStatus int
	}{
		{"plurality single choice", models.MethodPlurality, []string{"A"}, "alice", http.StatusCreated},
		{"plurality two choices", models.MethodPlurality, []string{"A", "B"}, "alice", http.StatusBadRequest},
		{"unknown option", models.MethodPlurality, []string{"Z"}, "alice", http.StatusBadRequest},
		{"empty choice", models.MethodPlurality, []string{}, "alice", http.StatusBadRequest},
		{"approval set", models.MethodApproval, []string{"A", "C", "A"}, "alice", http.StatusCreated},
		{"ranked", models.MethodIRV, []string{"C", "A"}, "alice", http.StatusCreated},
		{"ranked duplicate", models.MethodSTV, []string{"A", "A"}, "alice", http.StatusBadRequest},
		{"missing voter header", models.MethodPlurality, []string{"A"}, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			electionID, _ := env.createElection(t, tt.method, "A", "B", "C")

			w := env.cast(t, electionID, tt.voter, tt.options...)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			count, err := env.store.CountBallots(context.Background(), electionID)
			if err != nil {
				t.Fatalf("Failed to count ballots: %v", err)
			}
			want := 0
			if tt.expectedStatus == http.StatusCreated {
				want = 1
			}
			if count != want {
				t.Errorf("Expected %d stored ballots, got %d", want, count)
			}
		})
	}
}

func TestCastBallot_ReplacesPreviousBallot(t *testing.T) {
	env := newTestEnv(t)
	electionID, _ := env.createElection(t, models.MethodPlurality, "A", "B")

	w := env.cast(t, electionID, "alice", "A")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var first models.CastBallotResponse
	testutil.AssertJSON(t, w, &first)
	if first.Message != "Ballot submitted successfully" {
		t.Errorf("Unexpected message: %s", first.Message)
	}

	w = env.cast(t, electionID, "alice", "B")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var second models.CastBallotResponse
	testutil.AssertJSON(t, w, &second)
	if second.Message != "Ballot updated successfully" {
		t.Errorf("Unexpected message: %s", second.Message)
	}

	req := testutil.MakeRequest("GET", "/elections/"+electionID+"/my-ballot", nil,
		map[string]string{VoterHeader: "alice"})
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	env.voting.GetMyBallot(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var ballot models.Ballot
	testutil.AssertJSON(t, w, &ballot)
	if ballot.ID != second.BallotID || ballot.Choice.First() != "B" {
		t.Errorf("Expected the replacing ballot for B, got %+v", ballot)
	}
	if ballot.VoterFingerprint != "" {
		t.Error("Fingerprint must not be exposed")
	}
}

func TestGetMyBallot_NotVoted(t *testing.T) {
	env := newTestEnv(t)
	electionID, _ := env.createElection(t, models.MethodPlurality, "A", "B")

	req := testutil.MakeRequest("GET", "/elections/"+electionID+"/my-ballot", nil,
		map[string]string{VoterHeader: "nobody"})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	env.voting.GetMyBallot(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCastBallot_ClosedOrMissingElection(t *testing.T) {
	env := newTestEnv(t)
	electionID, adminKey := env.createElection(t, models.MethodPlurality, "A", "B")
	testutil.AssertStatus(t, env.close(t, electionID, adminKey), http.StatusOK)

	// closed is reported even for a malformed choice
	w := env.cast(t, electionID, "alice", "Z", "Y")
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = env.cast(t, "missing", "alice", "A")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
