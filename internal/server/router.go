// Package server exposes the meeting search over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"meetslot/internal/availability"
	"meetslot/internal/calendars"
	"meetslot/internal/dates"
	"meetslot/internal/finder"
	"meetslot/internal/models"
	"meetslot/internal/report"
)

// Defaults fill in the search parameters a request leaves out.
type Defaults struct {
	Window availability.WorkingWindow
	Top    int
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(logger *slog.Logger, f *finder.Finder, defaults Defaults) *mux.Router {
	r := mux.NewRouter()

	r.Use(withRequestID)
	r.Use(withAccessLog(logger))
	r.Use(withRecovery(logger))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", health).Methods(http.MethodGet)
	api.Handle("/meeting-times", withBodyLimit(meetingTimes(logger, f, defaults))).Methods(http.MethodPost)

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// MeetingTimesRequest is the body of POST /api/meeting-times. Calendars has the shape of
// the calendars document; MyCalendar any shape accepted for the caller's own calendar.
type MeetingTimesRequest struct {
	Calendars  json.RawMessage `json:"calendars"`
	MyCalendar json.RawMessage `json:"my_calendar,omitempty"`
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Duration   *int            `json:"duration,omitempty"`
	Top        *int            `json:"top,omitempty"`
	WorkStart  *int            `json:"work_start,omitempty"`
	WorkEnd    *int            `json:"work_end,omitempty"`
}

// meetingTimes answers with the structured records, or the text rendering when
// ?format=text is given.
func meetingTimes(logger *slog.Logger, f *finder.Finder, defaults Defaults) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body MeetingTimesRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, ErrBadRequest, "Invalid request body")
			return
		}

		req, err := buildRequest(body, defaults)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrValidation, err.Error())
			return
		}

		res, err := f.Find(r.Context(), req)
		if err != nil {
			if errors.Is(err, availability.ErrInvalidWindow) {
				writeError(w, http.StatusBadRequest, ErrValidation, err.Error())
				return
			}
			logger.Error("Meeting search failed.", "request_id", RequestIDFromContext(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, ErrInternalError, "Meeting search failed")
			return
		}

		if r.URL.Query().Get("format") == "text" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			err = report.WriteText(w, res.Slots, report.TextOptions{
				Duration:        req.Window.Duration,
				ShowMyConflicts: res.HasMyCalendar,
			})
		} else {
			w.Header().Set("Content-Type", "application/json")
			err = report.WriteJSON(w, res.Slots)
		}
		if err != nil {
			logger.Error("Failed to write meeting slots.", "request_id", RequestIDFromContext(r.Context()), "error", err)
		}
	})
}

func buildRequest(body MeetingTimesRequest, defaults Defaults) (finder.Request, error) {
	start, err := dates.ParseCompactDate(body.Start)
	if err != nil {
		return finder.Request{}, fmt.Errorf("start: %w", err)
	}
	end, err := dates.ParseCompactDate(body.End)
	if err != nil {
		return finder.Request{}, fmt.Errorf("end: %w", err)
	}
	if len(body.Calendars) == 0 {
		return finder.Request{}, errors.New("calendars is required")
	}
	cals, _, err := calendars.DecodeCalendars(bytes.NewReader(body.Calendars))
	if err != nil {
		return finder.Request{}, fmt.Errorf("calendars: %w", err)
	}

	req := finder.Request{
		Calendars: cals,
		Start:     start,
		End:       end,
		Window:    defaults.Window,
		Top:       defaults.Top,
	}
	if raw := bytes.TrimSpace(body.MyCalendar); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		mine, _, err := calendars.DecodeEvents(raw)
		if err != nil {
			return finder.Request{}, fmt.Errorf("my_calendar: %w", err)
		}
		if mine == nil {
			mine = []models.Event{}
		}
		req.MyEvents = mine
	}
	if body.Duration != nil {
		req.Window.Duration = time.Duration(*body.Duration) * time.Minute
	}
	if body.Top != nil {
		req.Top = *body.Top
	}
	if body.WorkStart != nil {
		req.Window.StartHour = *body.WorkStart
	}
	if body.WorkEnd != nil {
		req.Window.EndHour = *body.WorkEnd
	}
	return req, nil
}
