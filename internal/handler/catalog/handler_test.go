package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	model "github.com/ashleyhq/chat-backend/internal/model/catalog"
	catalogservice "github.com/ashleyhq/chat-backend/internal/service/catalog"
)

// toggleProvider serves the seed catalog until fail is flipped.
type toggleProvider struct {
	fail bool
}

func (p *toggleProvider) Fetch(_ context.Context) (model.Catalog, error) {
	if p.fail {
		return model.Catalog{}, errors.New("admin service unavailable")
	}
	return model.Seed(), nil
}

type recordingReconciler struct {
	calls int
}

func (r *recordingReconciler) Reconcile() {
	r.calls++
}

func setupRouter(svc *catalogservice.Service, sessions Reconciler) *chi.Mux {
	r := chi.NewRouter()
	New(svc, sessions).RegisterRoutes(r)
	return r
}

type catalogResponse struct {
	Personas []model.PersonaOption `json:"personas"`
	Models   []model.ModelOption   `json:"models"`
	Ready    bool                  `json:"ready"`
}

func TestGetCatalogAfterLoad(t *testing.T) {
	svc := catalogservice.NewService(&toggleProvider{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	r := setupRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body catalogResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Ready {
		t.Fatal("expected catalog to be ready after a successful load")
	}
	if len(body.Personas) == 0 || len(body.Models) == 0 {
		t.Fatalf("expected populated catalog, got %d personas and %d models", len(body.Personas), len(body.Models))
	}
}

func TestGetCatalogBeforeLoadReportsNotReady(t *testing.T) {
	svc := catalogservice.NewService(&toggleProvider{})
	r := setupRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body catalogResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Ready {
		t.Fatal("expected catalog to start not-ready")
	}
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	provider := &toggleProvider{}
	svc := catalogservice.NewService(provider)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	reconciler := &recordingReconciler{}
	r := setupRouter(svc, reconciler)

	provider.fail = true
	req := httptest.NewRequest(http.MethodPost, "/catalog/refresh", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if reconciler.calls != 0 {
		t.Fatalf("expected no reconcile after failed refresh, got %d", reconciler.calls)
	}

	// The stale snapshot stays queryable.
	req = httptest.NewRequest(http.MethodGet, "/catalog", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var body catalogResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Ready {
		t.Fatal("expected not-ready after failed refresh")
	}
	if len(body.Personas) == 0 {
		t.Fatal("expected previous personas to survive the failed refresh")
	}
}

func TestRefreshSuccessReconcilesSessions(t *testing.T) {
	svc := catalogservice.NewService(&toggleProvider{})
	reconciler := &recordingReconciler{}
	r := setupRouter(svc, reconciler)

	req := httptest.NewRequest(http.MethodPost, "/catalog/refresh", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if reconciler.calls != 1 {
		t.Fatalf("expected exactly one reconcile, got %d", reconciler.calls)
	}
}
