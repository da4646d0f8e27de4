package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashleyhq/chat-backend/internal/service/dispatch"
	sessionservice "github.com/ashleyhq/chat-backend/internal/service/session"
	"github.com/ashleyhq/chat-backend/pkg/utils"
)

// Handler exposes message dispatch on the active session.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	store      *sessionservice.Store
}

// New creates the chat handler.
func New(dispatcher *dispatch.Dispatcher, store *sessionservice.Store) *Handler {
	return &Handler{dispatcher: dispatcher, store: store}
}

// RegisterRoutes mounts chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/send", h.handleSend)
	r.Get("/chat/send-stream", h.handleSendStream)
}

type sendResult struct {
	Outcome string      `json:"outcome"`
	Session interface{} `json:"session,omitempty"`
}

// handleSend dispatches one message and waits for the outcome. Gateway
// failures still answer 200: the failure lives inside the session as a
// synthetic assistant message, not on the HTTP surface.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	disp, err := h.dispatcher.Send(payload.Content)
	if err != nil {
		h.respondSendError(w, err)
		return
	}

	select {
	case <-disp.Done():
	case <-r.Context().Done():
		// The dispatch keeps running on its own lifecycle; the client
		// can pick the result up from the session or the events feed.
		return
	}

	result := sendResult{Outcome: string(disp.Outcome())}
	if sess, ok := h.store.Get(disp.SessionID); ok {
		result.Session = sess
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleSendStream is the SSE variant: an accepted event up front, the
// terminal outcome when the dispatch settles.
func (h *Handler) handleSendStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	message := r.URL.Query().Get("message")
	disp, err := h.dispatcher.Send(message)
	if err != nil {
		h.respondSendError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "accepted", map[string]string{
		"sessionId": disp.SessionID,
	})

	select {
	case <-disp.Done():
	case <-r.Context().Done():
		return
	}

	result := sendResult{Outcome: string(disp.Outcome())}
	if sess, ok := h.store.Get(disp.SessionID); ok {
		result.Session = sess
	}
	utils.SendSSEEvent(w, flusher, "result", result)
}

func (h *Handler) respondSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "message content is required")
	case errors.Is(err, dispatch.ErrDispatcherClosed):
		utils.RespondError(w, http.StatusServiceUnavailable, "chat is shutting down")
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
