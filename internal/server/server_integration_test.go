package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/app"
	"github.com/ayusman/gimbaltrack/internal/store"
	"github.com/ayusman/gimbaltrack/internal/target"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	sess := &store.Session{Port: "/dev/ttyS0", Baud: 115200, FrameWidth: 240, FrameHeight: 240}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for i, tier := range []string{"accepted", "relaxed", "none"} {
		s.Detections().Insert(&store.Detection{SessionID: sess.ID, Frame: uint64(i + 1), Tier: tier})
	}

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. List sessions
	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != sess.ID {
		t.Fatalf("sessions = %+v, want [%s]", listed.Sessions, sess.ID)
	}

	// 2. Get single session with tier counts
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/sessions/%s status = %d, want %d", sess.ID, resp.StatusCode, http.StatusOK)
	}
	var got struct {
		Tiers map[string]int `json:"tiers"`
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()

	if got.Tiers["relaxed"] != 1 {
		t.Errorf("tiers = %v, want one relaxed", got.Tiers)
	}

	// 3. Detections
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID + "/detections?limit=1")
	var dets struct {
		Detections []struct {
			Frame uint64 `json:"frame"`
			Tier  string `json:"tier"`
		} `json:"detections"`
	}
	json.NewDecoder(resp.Body).Decode(&dets)
	resp.Body.Close()

	if len(dets.Detections) != 1 || dets.Detections[0].Frame != 3 {
		t.Errorf("detections = %+v, want frame 3 only", dets.Detections)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestAPI_StatusWebSocket(t *testing.T) {
	tracker := newFakeTracker()
	handler := NewStatusHandler(tracker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handler.Broadcast(ctx)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	read := func() app.Status {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var st app.Status
		if err := json.Unmarshal(msg, &st); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		return st
	}

	// Initial snapshot on connect
	if st := read(); st.Frame != 7 {
		t.Errorf("initial frame = %d, want 7", st.Frame)
	}

	tracker.mu.Lock()
	tracker.status.Frame = 8
	tracker.status.Tier = target.TierFallback
	tracker.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := read(); st.Frame == 8 {
			if st.Tier != target.TierFallback {
				t.Errorf("tier = %s, want fallback", st.Tier)
			}
			return
		}
	}
	t.Error("broadcast never delivered the updated status")
}

func TestRenderFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mask := gocv.NewMatWithSize(240, 240, gocv.MatTypeCV8UC1)
	defer mask.Close()
	canvas := gocv.NewMat()
	defer canvas.Close()

	st := app.Status{Centroid: target.Point{X: 120, Y: 120}, Tier: target.TierAccepted, BlobCount: 1}
	buf, err := RenderFrame(mask, st, &canvas)
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output is not a JPEG")
	}
	if canvas.Channels() != 3 {
		t.Errorf("canvas channels = %d, want 3", canvas.Channels())
	}

	// The marker is drawn in colour on the black mask.
	px := canvas.GetVecbAt(120, 120)
	if px[2] == 0 {
		t.Errorf("expected red marker at centroid, got %v", px)
	}
}
