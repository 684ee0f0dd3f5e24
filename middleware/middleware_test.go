// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gokitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/models"
)

// countingCounter records every Add along with the labels it was given
type countingCounter struct {
	total  *float64
	labels *[][]string
	lvs    []string
}

func newCountingCounter() *countingCounter {
	return &countingCounter{total: new(float64), labels: new([][]string)}
}

func (c *countingCounter) With(labelValues ...string) gokitmetrics.Counter {
	return &countingCounter{total: c.total, labels: c.labels, lvs: append(append([]string{}, c.lvs...), labelValues...)}
}

func (c *countingCounter) Add(delta float64) {
	*c.total += delta
	*c.labels = append(*c.labels, c.lvs)
}

func TestWithLogging_PassesResponseThrough(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"implicit OK", 0, "ok"},
		{"Created", http.StatusCreated, `{"ballot_id":"b1"}`},
		{"Conflict", http.StatusConflict, `{"error":"Conflict"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				if tc.statusCode != 0 {
					w.WriteHeader(tc.statusCode)
				}
				w.Write([]byte(tc.body))
			})

			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest("POST", "/elections", nil))

			want := tc.statusCode
			if want == 0 {
				want = http.StatusOK
			}
			if w.Code != want {
				t.Errorf("Expected status %d, got %d", want, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestWithLogging_RecordsMetrics(t *testing.T) {
	requests := newCountingCounter()
	errs := newCountingCounter()

	prev := metrics.API
	metrics.API = &metrics.APIMetrics{
		RequestsTotal:          requests,
		RequestErrorsTotal:     errs,
		RequestDurationSeconds: discard.NewHistogram(),
	}
	t.Cleanup(func() { metrics.API = prev })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /elections/{id}", WithLogging(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/elections/a", "/elections/b", "/elections/missing"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	if *requests.total != 3 {
		t.Errorf("Expected 3 requests, got %v", *requests.total)
	}
	if *errs.total != 1 {
		t.Errorf("Expected 1 error, got %v", *errs.total)
	}

	want := []string{"endpoint", "GET /elections/{id}", "method", "GET", "status", "404"}
	got := (*errs.labels)[0]
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected labels %v, got %v", want, got)
	}
	if status := (*requests.labels)[0][5]; status != "200" {
		t.Errorf("Expected first request status 200, got %s", status)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusConflict, "Election is closed")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("Expected Content-Type 'application/json'")
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error != "Conflict" || resp.Message != "Election is closed" {
		t.Errorf("Unexpected error response: %+v", resp)
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("election request", func(t *testing.T) {
		body := `{"name":"Board Seat","method":"irv","options":["A","B"],"duration":"1d2h","unknown_field":1}`
		req := httptest.NewRequest("POST", "/elections", strings.NewReader(body))

		var parsed models.CreateElectionRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Name != "Board Seat" || parsed.Method != "irv" || parsed.Duration != "1d2h" {
			t.Errorf("Unexpected parse result: %+v", parsed)
		}
		if len(parsed.Options) != 2 {
			t.Errorf("Expected 2 options, got %v", parsed.Options)
		}
	})

	for _, body := range []string{"", "{invalid json}"} {
		t.Run("rejects "+body, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/elections", strings.NewReader(body))
			var parsed models.CreateElectionRequest
			if err := ParseJSONBody(req, &parsed); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestCORS(t *testing.T) {
	corsHandler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	}))

	t.Run("preflight allows election headers", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/elections/e1/ballots", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "" {
			t.Errorf("Expected empty 200 preflight, got %d '%s'", w.Code, w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Content-Type", "X-Admin-Key", "X-Voter-ID"} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Expected %s in allowed headers, got %q", h, allowed)
			}
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		w := httptest.NewRecorder()
		corsHandler.ServeHTTP(w, httptest.NewRequest("GET", "/elections/e1", nil))

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"first hop of X-Forwarded-For", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:1", "203.0.113.195"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:1", "203.0.113.50"},
		{"RemoteAddr without port", nil, "192.168.1.50:54321", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}
