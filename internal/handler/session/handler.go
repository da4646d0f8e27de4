package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashleyhq/chat-backend/internal/handler/events"
	"github.com/ashleyhq/chat-backend/internal/service/dispatch"
	sessionservice "github.com/ashleyhq/chat-backend/internal/service/session"
	"github.com/ashleyhq/chat-backend/internal/service/title"
	"github.com/ashleyhq/chat-backend/pkg/utils"
)

// Handler exposes session CRUD and selection.
type Handler struct {
	store      *sessionservice.Store
	titles     *title.Generator
	dispatcher *dispatch.Dispatcher
	hub        *events.Hub
}

// New creates the session handler. titles, dispatcher, and hub may be
// nil in tests.
func New(store *sessionservice.Store, titles *title.Generator, dispatcher *dispatch.Dispatcher, hub *events.Hub) *Handler {
	return &Handler{store: store, titles: titles, dispatcher: dispatcher, hub: hub}
}

// RegisterRoutes mounts session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{sessionID}", h.handleGet)
		r.Delete("/{sessionID}", h.handleDelete)
		r.Post("/{sessionID}/select", h.handleSelect)
		r.Patch("/{sessionID}/title", h.handleRename)
		r.Put("/{sessionID}/persona", h.handleUpdatePersona)
		r.Put("/{sessionID}/model", h.handleUpdateModel)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.List()
	active, _ := h.store.Active()
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        sessions,
		"activeSessionId": active.ID,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	// Creating a session activates it, which is a session switch.
	if h.dispatcher != nil {
		h.dispatcher.CancelActive()
	}
	sess := h.store.Create()
	if h.hub != nil {
		h.hub.SessionEvent("created", sess.ID)
	}
	utils.RespondJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.store.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if active, ok := h.store.Active(); ok && active.ID == id && h.dispatcher != nil {
		h.dispatcher.CancelActive()
	}

	newActive, err := h.store.Delete(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if h.titles != nil {
		h.titles.Cancel(id)
	}
	if h.hub != nil {
		h.hub.SessionEvent("deleted", id)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"activeSession": newActive,
	})
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if active, ok := h.store.Active(); ok && active.ID != id && h.dispatcher != nil {
		// Switching away from a session cancels its outstanding call.
		h.dispatcher.CancelActive()
	}

	sess, err := h.store.Select(id)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.hub != nil {
		h.hub.SessionEvent("selected", sess.ID)
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "sessionID")
	if err := h.store.Rename(id, payload.Title); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	sess, _ := h.store.Get(id)
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleUpdatePersona(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PersonaID == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaId is required")
		return
	}

	sess, err := h.store.UpdatePersona(chi.URLParam(r, "sessionID"), payload.PersonaID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleUpdateModel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ModelID string `json:"modelId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ModelID == "" {
		utils.RespondError(w, http.StatusBadRequest, "modelId is required")
		return
	}

	sess, err := h.store.UpdateModel(chi.URLParam(r, "sessionID"), payload.ModelID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}
