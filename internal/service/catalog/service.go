// Package catalog owns the persona/model catalog snapshot. A failed
// refresh never clobbers previously loaded state; it only marks the
// snapshot not-ready so callers can surface staleness.
package catalog

import (
	"context"
	"fmt"
	"log"
	"sync"

	model "github.com/ashleyhq/chat-backend/internal/model/catalog"
)

// Service holds the latest catalog snapshot loaded from a Provider.
type Service struct {
	mu       sync.RWMutex
	provider Provider
	snapshot model.Catalog
	ready    bool
}

// NewService wraps the given provider. The catalog starts empty and
// not-ready until the first successful Load.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Load refreshes the snapshot. Safe to call repeatedly; the only side
// effect of a successful call is replacing the snapshot. On failure the
// prior snapshot is retained and the catalog is marked not-ready.
func (s *Service) Load(ctx context.Context) error {
	snapshot, err := s.provider.Fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.ready = false
		s.mu.Unlock()
		log.Printf("[catalog] load failed, keeping previous snapshot: %v", err)
		return fmt.Errorf("load catalog: %w", err)
	}

	normalized := snapshot.Normalize()

	s.mu.Lock()
	s.snapshot = normalized
	s.ready = true
	s.mu.Unlock()

	log.Printf("[catalog] loaded %d personas, %d models", len(normalized.Personas), len(normalized.Models))
	return nil
}

// Snapshot returns the current catalog and whether it is ready. The
// returned value may be stale or zero; callers must tolerate both.
func (s *Service) Snapshot() (model.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.ready
}

// Persona looks up a persona in the current snapshot.
func (s *Service) Persona(id string) (model.PersonaOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Persona(id)
}

// Model looks up a model in the current snapshot.
func (s *Service) Model(id string) (model.ModelOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Model(id)
}
