package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mentorgrid/scheduling/internal/scheduling"
)

func newTestHandler() *SchedulingHandler {
	return NewSchedulingHandler(nil, slog.New(slog.DiscardHandler))
}

func TestSlots_RequestValidation(t *testing.T) {
	h := newTestHandler()

	cases := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"wrong method", http.MethodPost, "/api/v1/public/slots", http.StatusMethodNotAllowed},
		{"missing mentor", http.MethodGet, "/api/v1/public/slots?session_type_id=s1&date=2026-02-16", http.StatusBadRequest},
		{"missing session type", http.MethodGet, "/api/v1/public/slots?mentor_id=m1&date=2026-02-16", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/v1/public/slots?mentor_id=m1&session_type_id=s1&date=16-02-2026", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.Slots(rec, httptest.NewRequest(tc.method, tc.target, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestBook_RequestValidation(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Book(rec, httptest.NewRequest(http.MethodPost, "/api/v1/public/book", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := `{"mentor_id":"m1","mentee_id":"u1","session_type_id":"s1","start":"yesterday"}`
	h.Book(rec, httptest.NewRequest(http.MethodPost, "/api/v1/public/book", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad start, got %d", rec.Code)
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	h := newTestHandler()

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad slot", scheduling.ErrInvalidSlot), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: mentor busy", scheduling.ErrSlotConflict), http.StatusConflict},
		{scheduling.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: pg down", scheduling.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.writeError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}
