package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/gimbaltrack/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func seedSession(t *testing.T, s *store.Store, tiers ...string) *store.Session {
	t.Helper()

	sess := &store.Session{Port: "/dev/ttyS0", Baud: 115200, FrameWidth: 240, FrameHeight: 240}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	for i, tier := range tiers {
		d := &store.Detection{SessionID: sess.ID, Frame: uint64(i + 1), X: 120, Y: 120, Tier: tier, TxOK: true}
		if err := s.Detections().Insert(d); err != nil {
			t.Fatalf("failed to insert detection: %v", err)
		}
	}
	return sess
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	rec := serve(handler, http.MethodGet, "/api/sessions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Body.String(); got != "{\"sessions\":[]}\n" {
		t.Errorf("empty list body = %q", got)
	}

	seedSession(t, s)
	seedSession(t, s)

	rec = serve(handler, http.MethodGet, "/api/sessions/")
	var response struct {
		Sessions []store.Session `json:"sessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(response.Sessions))
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s, "accepted", "accepted", "fallback")

	rec := serve(handler, http.MethodGet, "/api/sessions/"+sess.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		ID    string         `json:"id"`
		Port  string         `json:"port"`
		Tiers map[string]int `json:"tiers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.ID != sess.ID {
		t.Errorf("expected ID %s, got %s", sess.ID, response.ID)
	}
	if response.Port != "/dev/ttyS0" {
		t.Errorf("expected port /dev/ttyS0, got %s", response.Port)
	}
	if response.Tiers["accepted"] != 2 || response.Tiers["fallback"] != 1 {
		t.Errorf("unexpected tier counts %v", response.Tiers)
	}
}

func TestSessionHandler_Detections(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s, "none", "relaxed", "accepted")

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
	}{
		{name: "default limit", query: "", wantStatus: http.StatusOK, wantCount: 3},
		{name: "limited", query: "?limit=2", wantStatus: http.StatusOK, wantCount: 2},
		{name: "zero returns all", query: "?limit=0", wantStatus: http.StatusOK, wantCount: 3},
		{name: "invalid limit", query: "?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "negative limit", query: "?limit=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodGet, "/api/sessions/"+sess.ID+"/detections"+tt.query)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var response struct {
				SessionID  string            `json:"session_id"`
				Detections []store.Detection `json:"detections"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Detections) != tt.wantCount {
				t.Errorf("expected %d detections, got %d", tt.wantCount, len(response.Detections))
			}
			if response.Detections[0].Tier != "accepted" {
				t.Errorf("expected newest detection first, got tier %s", response.Detections[0].Tier)
			}
		})
	}
}

func TestSessionHandler_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	paths := []string{
		"/api/sessions/missing",
		"/api/sessions/missing/detections",
		"/api/sessions/missing/unknown",
	}
	for _, path := range paths {
		rec := serve(handler, http.MethodGet, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := serve(handler, method, "/api/sessions")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
