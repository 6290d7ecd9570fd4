package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseQueryTime(t *testing.T) {
	if parseQueryTime("") != nil {
		t.Error("expected nil for empty string")
	}
	if parseQueryTime("not-a-time") != nil {
		t.Error("expected nil for unparseable string")
	}
	got := parseQueryTime("2025-08-14T10:00:00Z")
	if got == nil || got.Year() != 2025 {
		t.Fatalf("unexpected result: %v", got)
	}
	want := time.Date(2025, time.August, 14, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCORSHeadersOnOptions(t *testing.T) {
	s := &Server{}
	router := s.Router()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/tenders", nil)
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}

func TestGetTenderInvalidID(t *testing.T) {
	s := &Server{}
	router := s.Router()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tenders/not-a-number", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSavePreferencesMissingEmail(t *testing.T) {
	s := &Server{}
	router := s.Router()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/user/preferences", strings.NewReader(`{"categories":["roads"]}`))
	router.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
