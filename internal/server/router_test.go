package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meetslot/internal/availability"
	"meetslot/internal/finder"
	"meetslot/internal/report"
)

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, finder.NewFinder(logger, 2), Defaults{Window: availability.DefaultWindow, Top: availability.DefaultTop})
}

const body = `{
  "start": "02162026",
  "end": "02162026",
  "top": 2,
  "calendars": {
    "Alice": [{"start": "2/16/2026 9:00 AM", "end": "2/16/2026 10:00 AM", "subject": "Standup", "busyStatus": "Busy"}],
    "Bob": [{"start": "2/16/2026 9:00 AM", "end": "2/16/2026 9:30 AM", "subject": "Hold", "busyStatus": "Tentative"}]
  },
  "my_calendar": [{"type": "text", "text": "[{\"start\": \"2/16/2026 10:00 AM\", \"end\": \"2/16/2026 11:00 AM\", \"subject\": \"Mine\"}]"}]
}`

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestMeetingTimes_JSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/meeting-times", strings.NewReader(body))
	req.Header.Set(RequestIDHeader, "abc")
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected request id to be echoed, got %q", rec.Header().Get(RequestIDHeader))
	}

	var got []report.SlotRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	// 10:00 is the first slot where both are free; it collides with the caller's own event.
	if got[0].Start != "2026-02-16T10:00:00" || got[0].AvailableCount != 2 {
		t.Fatalf("unexpected best slot: %+v", got[0])
	}
	if strings.Join(got[0].Free, ",") != "Alice,Bob" {
		t.Fatalf("expected document order, got %v", got[0].Free)
	}
	if len(got[0].MyConflicts) != 1 || got[0].MyConflicts[0].Subject != "Mine" {
		t.Fatalf("unexpected conflicts: %+v", got[0].MyConflicts)
	}
}

func TestMeetingTimes_Text(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/meeting-times?format=text", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "1. **Mon 02/16 10:00 AM - 11:00 AM** (2/2 available)") {
		t.Fatalf("unexpected text output:\n%s", out)
	}
	if !strings.Contains(out, "Your conflicts: Mine [Busy]") {
		t.Fatalf("expected own conflicts in output:\n%s", out)
	}
}

func TestMeetingTimes_BadRequests(t *testing.T) {
	cases := map[string]string{
		"invalid json":    `{`,
		"missing start":   `{"end": "02162026", "calendars": {}}`,
		"bad calendars":   `{"start": "02162026", "end": "02162026", "calendars": []}`,
		"no calendars":    `{"start": "02162026", "end": "02162026"}`,
		"bad hours":       `{"start": "02162026", "end": "02162026", "calendars": {}, "work_start": 18}`,
		"range too long":  `{"start": "01010001", "end": "12319999", "calendars": {}}`,
		"bad my_calendar": `{"start": "02162026", "end": "02162026", "calendars": {}, "my_calendar": 5}`,
	}
	for name, in := range cases {
		rec := httptest.NewRecorder()
		newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/meeting-times", strings.NewReader(in)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
			continue
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
			t.Errorf("%s: expected JSON error body, got %q", name, rec.Body.String())
		}
	}
}

func TestMeetingTimes_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/meeting-times", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestMeetingTimes_LogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	router := NewRouter(logger, finder.NewFinder(logger, 1), Defaults{Window: availability.DefaultWindow, Top: availability.DefaultTop})

	for _, target := range []string{"/api/meeting-times", "/api/meeting-times?format=text"} {
		logs.Reset()
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set(RequestIDHeader, "abc")
		router.ServeHTTP(failingWriter{httptest.NewRecorder()}, req)

		out := logs.String()
		if !strings.Contains(out, "Failed to write meeting slots.") || !strings.Contains(out, "request_id=abc") {
			t.Fatalf("%s: expected write failure to be logged, got:\n%s", target, out)
		}
	}
}
