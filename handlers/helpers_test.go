// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/lifecycle"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/testutil"
)

type testEnv struct {
	cfg       cliparse.Config
	store     *db.Store
	manager   *lifecycle.Manager
	publisher *testutil.RecordingPublisher
	elections *ElectionHandler
	voting    *VotingHandler
	results   *ResultsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testutil.GetTestConfig()
	store := testutil.SetupTestStore(t)
	publisher := &testutil.RecordingPublisher{}

	manager, err := lifecycle.New(lifecycle.Options{
		Store:            store,
		Publisher:        publisher,
		Anonymizer:       testutil.TestAnonymizer(t),
		DefaultDuration:  cfg.DefaultDuration,
		DefaultThreshold: cfg.DefaultThreshold,
	})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(manager.Stop)

	return &testEnv{
		cfg:       cfg,
		store:     store,
		manager:   manager,
		publisher: publisher,
		elections: NewElectionHandler(manager, cfg),
		voting:    NewVotingHandler(manager, cfg),
		results:   NewResultsHandler(manager, cfg),
	}
}

// createElection opens an election through the manager and returns its id and admin key
func (env *testEnv) createElection(t *testing.T, method string, options ...string) (string, string) {
	t.Helper()

	e, err := env.manager.Create(context.Background(), models.Election{
		Name:    "Test Election",
		Kind:    models.KindCandidate,
		Method:  method,
		Options: options,
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e.ID, auth.GenerateAdminKey(e.ID, env.cfg.AdminKeySalt)
}

func (env *testEnv) cast(t *testing.T, electionID, voterID string, options ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/ballots",
		models.CastBallotRequest{Options: options},
		map[string]string{VoterHeader: voterID})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	env.voting.CastBallot(w, req)
	return w
}

func (env *testEnv) close(t *testing.T, electionID, adminKey string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/close", nil,
		map[string]string{"X-Admin-Key": adminKey})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	env.elections.CloseElection(w, req)
	return w
}

func (env *testEnv) getResults(t *testing.T, electionID, query string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/elections/"+electionID+"/results"+query, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	env.results.GetResults(w, req)
	return w
}
