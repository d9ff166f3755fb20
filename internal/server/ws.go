package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/gimbaltrack/internal/monitoring"
)

// BroadcastInterval is the push period of /api/ws (~15 Hz).
const BroadcastInterval = 66 * time.Millisecond

// writeWait bounds a single websocket write.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusHandler pushes tracker status to WebSocket clients.
type StatusHandler struct {
	tracker Tracker
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
}

// NewStatusHandler creates a StatusHandler. Nothing is pushed until Broadcast runs.
func NewStatusHandler(t Tracker) *StatusHandler {
	return &StatusHandler{
		tracker: t,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP handles WebSocket upgrade requests. The current status is sent
// right away so clients do not wait for the first tick.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	lock := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	if msg, err := json.Marshal(h.tracker.Status()); err == nil {
		h.send(conn, lock, msg)
	}

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StatusHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the status to every client each BroadcastInterval until
// ctx is cancelled.
func (h *StatusHandler) Broadcast(ctx context.Context) {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		msg, err := json.Marshal(h.tracker.Status())
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn, lock := range h.clients {
			h.send(conn, lock, msg)
		}
		h.mu.RUnlock()
	}
}

func (h *StatusHandler) send(conn *websocket.Conn, lock *sync.Mutex, msg []byte) {
	lock.Lock()
	defer lock.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		conn.Close()
	}
}
