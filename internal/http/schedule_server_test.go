package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"optisched/internal/model"
	"strings"
	"testing"
)

func requireEqual[K comparable](name string, first K, second K, t *testing.T) {
	t.Helper()
	if first != second {
		t.Fatalf("expected %s to be equal, instead got %v and %v", name, first, second)
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	server, err := NewScheduleServer("localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	return server.Handler
}

func post(handler http.Handler, url, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, v any, t *testing.T) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("error decoding response %q: %v", rec.Body.String(), err)
	}
}

func requireError(rec *httptest.ResponseRecorder, statusCode int, contains string, t *testing.T) {
	t.Helper()
	requireEqual("status code", statusCode, rec.Code, t)
	var body map[string]string
	decode(rec, &body, t)
	if !strings.Contains(body["error"], contains) {
		t.Fatalf("expected error containing %q, got %q", contains, body["error"])
	}
}

func TestSelectIntervalsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	const url = "/api/v1/intervals/"

	t.Run("Test selecting meetings", func(t *testing.T) {
		body := `{"intervals":[{"start":1,"end":3},{"start":2,"end":4},{"start":3,"end":5},{"start":0,"end":6}]}`
		rec := post(handler, url, "application/json; charset=utf-8", body)
		requireEqual("status code", http.StatusOK, rec.Code, t)
		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatal("expected request id header")
		}
		var response responseIntervals
		decode(rec, &response, t)
		requireEqual("count", 2, response.Count, t)
		requireEqual("first", model.Interval{Start: 1, End: 3}, response.Selected[0], t)
		requireEqual("second", model.Interval{Start: 3, End: 5}, response.Selected[1], t)
	})

	t.Run("Test empty list", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{"intervals":[]}`)
		requireEqual("status code", http.StatusOK, rec.Code, t)
		if !strings.Contains(rec.Body.String(), `"selected":[]`) {
			t.Fatalf("expected empty selection, got %s", rec.Body.String())
		}
	})

	t.Run("Test start not before end", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{"intervals":[{"start":1,"end":3},{"start":4,"end":4}]}`)
		requireError(rec, http.StatusUnprocessableEntity, "intervals[1].end: end must be greater than start", t)
	})

	t.Run("Test missing bound", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{"intervals":[{"start":1}]}`)
		requireError(rec, http.StatusUnprocessableEntity, "intervals[0].end: end is required", t)
	})

	t.Run("Test missing list", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{}`)
		requireError(rec, http.StatusUnprocessableEntity, "intervals is required", t)
	})

	t.Run("Test unknown field", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{"meetings":[]}`)
		requireError(rec, http.StatusBadRequest, "failed to parse request body", t)
	})

	t.Run("Test wrong content type", func(t *testing.T) {
		rec := post(handler, url, "text/plain", `{"intervals":[]}`)
		requireError(rec, http.StatusUnsupportedMediaType, "expect application/json Content-Type", t)
	})

	t.Run("Test wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatal("expected request id header")
		}
		requireError(rec, http.StatusMethodNotAllowed, "method GET is not allowed for /api/v1/intervals/", t)
	})
}

func TestScheduleJobsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	const url = "/api/v1/jobshop/"

	t.Run("Test scheduling two jobs", func(t *testing.T) {
		body := `{"jobs":[[{"machine":0,"duration":3},{"machine":1,"duration":2}],[{"machine":1,"duration":4},{"machine":0,"duration":1}]]}`
		rec := post(handler, url, "application/json", body)
		requireEqual("status code", http.StatusOK, rec.Code, t)

		var response responseSchedule
		decode(rec, &response, t)
		requireEqual("makespan", 10, response.Makespan, t)
		requireEqual("machine count", 2, len(response.Machines), t)
		requireEqual("first machine", model.MachineId(0), response.Machines[0].Machine, t)
		requireEqual(
			"machine 0 second operation",
			model.Operation{Job: 1, Step: 1, Machine: 0, Duration: 1, Start: 9, End: 10},
			response.Machines[0].Operations[1],
			t,
		)
		requireEqual(
			"machine 1 second operation",
			model.Operation{Job: 1, Step: 0, Machine: 1, Duration: 4, Start: 5, End: 9},
			response.Machines[1].Operations[1],
			t,
		)
		requireEqual("job summaries", 2, len(response.Jobs), t)
		requireEqual("job 0", model.JobSummary{Job: 0, Start: 0, End: 5}, response.Jobs[0], t)
	})

	t.Run("Test no jobs", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{"jobs":[]}`)
		requireEqual("status code", http.StatusOK, rec.Code, t)
		var response responseSchedule
		decode(rec, &response, t)
		requireEqual("makespan", 0, response.Makespan, t)
		requireEqual("machine count", 0, len(response.Machines), t)
	})

	t.Run("Test zero duration", func(t *testing.T) {
		body := `{"jobs":[[{"machine":0,"duration":3},{"machine":1,"duration":0}]]}`
		rec := post(handler, url, "application/json", body)
		requireError(rec, http.StatusUnprocessableEntity, "jobs[0][1].duration: duration must be positive", t)
	})

	t.Run("Test negative machine", func(t *testing.T) {
		body := `{"jobs":[[{"machine":-1,"duration":3}]]}`
		rec := post(handler, url, "application/json", body)
		requireError(rec, http.StatusUnprocessableEntity, "jobs[0][0].machine: machine must not be negative", t)
	})

	t.Run("Test malformed body", func(t *testing.T) {
		rec := post(handler, url, "application/json", `{"jobs":[[{"machine":0,`)
		requireError(rec, http.StatusBadRequest, "failed to parse request body", t)
	})
}

func TestUnknownRoute(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	requireError(rec, http.StatusNotFound, "no route for /api/v1/nope/", t)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/", nil))
	requireEqual("status code", http.StatusOK, rec.Code, t)
	var body map[string]string
	decode(rec, &body, t)
	requireEqual("status", "ok", body["status"], t)
}
