// Package events pushes orchestrator activity (dispatch transitions,
// session lifecycle, derived titles) to WebSocket subscribers.
package events

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ashleyhq/chat-backend/internal/service/dispatch"
)

// Message is one event on the feed.
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	State     string `json:"state,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Title     string `json:"title,omitempty"`
	Action    string `json:"action,omitempty"`
}

const clientBuffer = 16

// Hub fans events out to connected clients. Slow clients drop events
// rather than blocking publishers.
type Hub struct {
	mu       sync.Mutex
	clients  map[chan Message]bool
	closed   bool
	upgrader websocket.Upgrader
}

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[chan Message]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the feed endpoint.
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleSubscribe)
}

// DispatchEvent implements dispatch.EventSink.
func (h *Hub) DispatchEvent(ev dispatch.Event) {
	h.broadcast(Message{
		Type:      "dispatch",
		SessionID: ev.SessionID,
		State:     string(ev.State),
		Outcome:   string(ev.Outcome),
	})
}

// TitleDerived implements the title generator's sink.
func (h *Hub) TitleDerived(sessionID, title string) {
	h.broadcast(Message{Type: "title", SessionID: sessionID, Title: title})
}

// SessionEvent reports session lifecycle changes.
func (h *Hub) SessionEvent(action, sessionID string) {
	h.broadcast(Message{Type: "session", SessionID: sessionID, Action: action})
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// Client is not keeping up; drop the event.
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.clients {
		close(ch)
		delete(h.clients, ch)
	}
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] upgrade failed: %v", err)
		return
	}

	ch := make(chan Message, clientBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[ch] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Reader goroutine: consume control frames and detect close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[events] write failed: %v", err)
				}
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
