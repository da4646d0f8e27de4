package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	catalogHandler "github.com/ashleyhq/chat-backend/internal/handler/catalog"
	chatHandler "github.com/ashleyhq/chat-backend/internal/handler/chat"
	"github.com/ashleyhq/chat-backend/internal/handler/events"
	sessionHandler "github.com/ashleyhq/chat-backend/internal/handler/session"
	middlewarePkg "github.com/ashleyhq/chat-backend/internal/middleware"
	catalogservice "github.com/ashleyhq/chat-backend/internal/service/catalog"
	"github.com/ashleyhq/chat-backend/internal/service/dispatch"
	sessionservice "github.com/ashleyhq/chat-backend/internal/service/session"
	"github.com/ashleyhq/chat-backend/internal/service/title"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	catalogSvc *catalogservice.Service,
	store *sessionservice.Store,
	titles *title.Generator,
	dispatcher *dispatch.Dispatcher,
	hub *events.Hub,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		catalogHandler.New(catalogSvc, store).RegisterRoutes(api)
		sessionHandler.New(store, titles, dispatcher, hub).RegisterRoutes(api)
		chatHandler.New(dispatcher, store).RegisterRoutes(api)
		if hub != nil {
			hub.RegisterRoutes(api)
		}
	})

	return r
}
