package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ashleyhq/chat-backend/internal/config"
	"github.com/ashleyhq/chat-backend/internal/handler"
	"github.com/ashleyhq/chat-backend/internal/handler/events"
	"github.com/ashleyhq/chat-backend/internal/service/ai"
	catalogservice "github.com/ashleyhq/chat-backend/internal/service/catalog"
	"github.com/ashleyhq/chat-backend/internal/service/dispatch"
	"github.com/ashleyhq/chat-backend/internal/service/identity"
	sessionservice "github.com/ashleyhq/chat-backend/internal/service/session"
	"github.com/ashleyhq/chat-backend/internal/service/title"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Catalog: remote provider when a URL is configured, seed otherwise.
	var provider catalogservice.Provider
	if cfg.Catalog.URL != "" {
		provider = catalogservice.NewHTTPProvider(cfg.Catalog.URL, cfg.Catalog.Timeout)
		log.Printf("catalog provider: %s", cfg.Catalog.URL)
	} else {
		provider = catalogservice.StaticProvider{}
		log.Println("catalog provider: built-in seed")
	}

	catalogSvc := catalogservice.NewService(provider)
	if err := catalogSvc.Load(ctx); err != nil {
		// The store still bootstraps; the catalog stays not-ready until
		// a refresh succeeds.
		log.Printf("warning: initial catalog load failed: %v", err)
	}

	// Resolve who we are running for. The identity only seeds the
	// default persona choice.
	identityProvider := identity.NewStaticProvider(identity.Identity{
		UserID:           cfg.Identity.UserID,
		DefaultPersonaID: cfg.Identity.DefaultPersonaID,
		NSFWAllowed:      cfg.Identity.NSFWAllowed,
	})

	defaultPersonaID := cfg.Chat.DefaultPersonaID
	if id, err := identityProvider.Resolve(ctx); err != nil {
		log.Printf("warning: identity resolution failed, using configured default persona: %v", err)
	} else if id.DefaultPersonaID != "" {
		defaultPersonaID = id.DefaultPersonaID
	}

	store := sessionservice.NewStore(catalogSvc, defaultPersonaID)

	hub := events.NewHub()
	titles := title.NewGenerator(store, cfg.Chat.TitleDelay, hub)

	var gateway dispatch.Gateway
	if cfg.AI.Enabled() {
		gateway = ai.NewService(cfg.AI, catalogSvc)
		log.Println("AI gateway initialized successfully")
	} else {
		gateway = dispatch.DisabledGateway{}
		log.Println("Ark credentials not configured, chat sends will fail in-session")
	}

	dispatcher := dispatch.New(store, gateway, titles, hub)
	defer func() {
		dispatcher.Close()
		titles.Close()
		hub.Close()
	}()

	router := handler.NewRouter(catalogSvc, store, titles, dispatcher, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Ashley chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
