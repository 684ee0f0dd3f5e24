// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

// TestVoteSecret keys fingerprints in tests
const TestVoteSecret = "test-vote-secret"

// SetupTestDB opens a private in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a db.Store
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      ":memory:",
		DatabaseType:     "sqlite",
		VoteSecret:       TestVoteSecret,
		AdminKeySalt:     "test-admin-salt",
		DefaultDuration:  time.Hour,
		DefaultThreshold: models.DefaultThreshold,
	}
}

// TestAnonymizer returns an anonymizer keyed with TestVoteSecret
func TestAnonymizer(t *testing.T) *auth.Anonymizer {
	t.Helper()
	a, err := auth.NewAnonymizer(TestVoteSecret)
	if err != nil {
		t.Fatalf("Failed to create anonymizer: %v", err)
	}
	return a
}

// NewTestElection builds a valid open election that ends in an hour
func NewTestElection(method string, options ...string) models.Election {
	id, _ := auth.GenerateID(8)
	now := time.Now().Truncate(time.Millisecond)
	return models.Election{
		ID:        id,
		Name:      "Test Election",
		Kind:      models.KindCandidate,
		Method:    method,
		Options:   options,
		Threshold: models.DefaultThreshold,
		CreatedAt: now,
		EndsAt:    now.Add(time.Hour),
	}
}

// CreateTestElection saves an election straight to the store, bypassing the scheduler
func CreateTestElection(t *testing.T, store *db.Store, method string, options ...string) models.Election {
	t.Helper()

	e := NewTestElection(method, options...)
	if err := store.SaveElection(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// CastTestBallot stores a ballot for a fingerprint and returns its ID
func CastTestBallot(t *testing.T, store *db.Store, electionID, fingerprint string, options ...string) string {
	t.Helper()

	ballotID, _ := auth.GenerateID(16)
	_, err := store.SaveBallot(context.Background(), models.Ballot{
		ID:               ballotID,
		ElectionID:       electionID,
		VoterFingerprint: fingerprint,
		Choice:           models.Choice{Options: options},
		CreatedAt:        time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// RecordingPublisher remembers every published result.
// Set Err to make Publish fail.
type RecordingPublisher struct {
	mu        sync.Mutex
	Err       error
	Published []models.TallyResult
	Elections []models.Election
}

func (p *RecordingPublisher) Publish(_ context.Context, e models.Election, r models.TallyResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Elections = append(p.Elections, e)
	p.Published = append(p.Published, r)
	return p.Err
}

// Count returns how many times Publish was called
func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
