package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogservice "github.com/ashleyhq/chat-backend/internal/service/catalog"
	"github.com/ashleyhq/chat-backend/pkg/utils"
)

// Reconciler re-validates sessions after a catalog refresh.
type Reconciler interface {
	Reconcile()
}

// Handler exposes the persona/model catalog.
type Handler struct {
	catalog  *catalogservice.Service
	sessions Reconciler
}

// New creates the catalog handler. sessions may be nil.
func New(catalog *catalogservice.Service, sessions Reconciler) *Handler {
	return &Handler{catalog: catalog, sessions: sessions}
}

// RegisterRoutes mounts catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.handleGetCatalog)
	r.Post("/catalog/refresh", h.handleRefresh)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	snapshot, ready := h.catalog.Snapshot()
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"personas":          snapshot.Personas,
		"models":            snapshot.Models,
		"personaCategories": snapshot.PersonaCategories,
		"modelCategories":   snapshot.ModelCategories,
		"ready":             ready,
	})
}

// handleRefresh reloads the catalog. A failed load is reported but the
// previous snapshot stays live, so this is never a destructive call.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Load(r.Context()); err != nil {
		utils.RespondError(w, http.StatusBadGateway, "catalog refresh failed")
		return
	}
	if h.sessions != nil {
		h.sessions.Reconcile()
	}
	snapshot, ready := h.catalog.Snapshot()
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"personas": len(snapshot.Personas),
		"models":   len(snapshot.Models),
		"ready":    ready,
	})
}
