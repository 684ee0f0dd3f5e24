// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickly-elect/models"
)

// TestConcurrentBallotSubmissions verifies that simultaneous ballots from
// different voters are all stored exactly once
func TestConcurrentBallotSubmissions(t *testing.T) {
	env := newTestEnv(t)
	electionID, _ := env.createElection(t, models.MethodPlurality, "A", "B", "C")
	options := []string{"A", "B", "C"}

	numVoters := 20
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			w := env.cast(t, electionID, "voter-"+strconv.Itoa(voterIdx), options[voterIdx%3])
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			} else {
				t.Errorf("Voter %d: expected 201, got %d: %s", voterIdx, w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful ballots, got %d", numVoters, successCount.Load())
	}

	count, err := env.store.CountBallots(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if count != numVoters {
		t.Errorf("Expected %d ballots in store, got %d", numVoters, count)
	}
}

// TestConcurrentElectionClose verifies that racing admin closes finalize once
func TestConcurrentElectionClose(t *testing.T) {
	env := newTestEnv(t)
	electionID, adminKey := env.createElection(t, models.MethodPlurality, "A", "B")
	env.cast(t, electionID, "alice", "A")

	numAttempts := 5
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := env.close(t, electionID, adminKey)
			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}

	wg.Wait()

	if okCount.Load() < 1 {
		t.Error("Expected at least one successful close")
	}
	if okCount.Load()+conflictCount.Load() != int32(numAttempts) {
		t.Errorf("Every attempt should succeed or conflict")
	}
	if env.publisher.Count() != 1 {
		t.Errorf("Expected exactly 1 published result, got %d", env.publisher.Count())
	}

	e, err := env.store.GetElection(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Failed to load election: %v", err)
	}
	if !e.Closed || e.Result == nil {
		t.Error("Expected a closed election with a result")
	}
}

// TestConcurrentBallotUpdates verifies that a single voter replacing their
// ballot concurrently ends with exactly one ballot
func TestConcurrentBallotUpdates(t *testing.T) {
	env := newTestEnv(t)
	electionID, _ := env.createElection(t, models.MethodIRV, "A", "B", "C")
	rankings := [][]string{{"A", "B"}, {"B", "C"}, {"C"}, {"C", "A", "B"}}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		submitted int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := env.cast(t, electionID, "alice", rankings[i%len(rankings)]...)
			var resp models.CastBallotResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Errorf("Failed to decode response: %v", err)
				return
			}
			if resp.Message == "Ballot submitted successfully" {
				mu.Lock()
				submitted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	count, err := env.store.CountBallots(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 ballot for the voter, got %d", count)
	}
	// Only the cast that created the row reports a new submission
	if submitted != 1 {
		t.Errorf("Expected exactly 1 'submitted' response, got %d", submitted)
	}
}

// TestParallelElections verifies that elections don't interfere with each other
func TestParallelElections(t *testing.T) {
	env := newTestEnv(t)

	numElections := 4
	ids := make([]string, numElections)
	for i := range ids {
		ids[i], _ = env.createElection(t, models.MethodPlurality, "A", "B")
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		for v := 0; v <= i; v++ {
			wg.Add(1)
			go func(id string, v int) {
				defer wg.Done()
				env.cast(t, id, "voter-"+strconv.Itoa(v), "B")
			}(id, v)
		}
	}
	wg.Wait()

	for i, id := range ids {
		count, err := env.store.CountBallots(context.Background(), id)
		if err != nil {
			t.Fatalf("Failed to count ballots: %v", err)
		}
		if count != i+1 {
			t.Errorf("Election %d: expected %d ballots, got %d", i, i+1, count)
		}
	}
}
