package compat_test

import (
	"testing"

	"github.com/ashleyhq/chat-backend/internal/model/catalog"
	"github.com/ashleyhq/chat-backend/internal/service/compat"
)

func TestResolveModelPrefersRequested(t *testing.T) {
	persona := catalog.PersonaOption{
		ID:              "ashley-data-analyst",
		DefaultModel:    "auto",
		AllowedModelIDs: []string{"auto", "qwen-2.5-7b"},
	}

	got := compat.ResolveModel(persona, "qwen-2.5-7b", "auto")
	if got != "qwen-2.5-7b" {
		t.Fatalf("expected requested model to win, got %s", got)
	}
}

func TestResolveModelFallsBackOnPersonaSwitch(t *testing.T) {
	// Switching from the girlfriend persona (nous-hermes allowed) to the
	// data analyst must drop the stale model id and land on auto.
	analyst := catalog.PersonaOption{
		ID:              "ashley-data-analyst",
		DefaultModel:    "auto",
		AllowedModelIDs: []string{"auto", "qwen-2.5-7b"},
	}

	got := compat.ResolveModel(analyst, "nous-hermes-2-mistral-7b-gptq", "nous-hermes-2-mistral-7b-gptq")
	if got != "auto" {
		t.Fatalf("expected auto after persona switch, got %s", got)
	}
}

func TestResolveModelEmptyAllowedSet(t *testing.T) {
	persona := catalog.PersonaOption{ID: "bare"}

	if got := compat.ResolveModel(persona, "qwen-2.5-7b", "qwen-2.5-7b"); got != "auto" {
		t.Fatalf("expected auto for unconstrained persona, got %s", got)
	}
}

func TestResolveModelAlwaysInAllowedSet(t *testing.T) {
	personas := []catalog.PersonaOption{
		{ID: "a", DefaultModel: "m2", AllowedModelIDs: []string{"auto", "m1", "m2"}},
		{ID: "b", DefaultModel: "gone", AllowedModelIDs: []string{"auto", "m3"}},
		{ID: "c"},
	}
	requests := []string{"", "auto", "m1", "m3", "unknown"}
	previous := []string{"", "m2", "unknown"}

	for _, p := range personas {
		allowed := map[string]bool{"auto": true}
		for _, id := range p.AllowedModelIDs {
			allowed[id] = true
		}
		for _, req := range requests {
			for _, prev := range previous {
				got := compat.ResolveModel(p, req, prev)
				if !allowed[got] {
					t.Fatalf("persona %s: resolved %s outside allowed set (req=%s prev=%s)", p.ID, got, req, prev)
				}
			}
		}
	}
}

func TestResolveModelPreviousBeatsAuto(t *testing.T) {
	persona := catalog.PersonaOption{
		ID:              "ashley-data-scientist",
		DefaultModel:    "unavailable",
		AllowedModelIDs: []string{"auto", "qwen-2.5-7b"},
	}

	if got := compat.ResolveModel(persona, "unknown", "qwen-2.5-7b"); got != "qwen-2.5-7b" {
		t.Fatalf("expected previous model to be kept, got %s", got)
	}
}

func TestDefaultPersona(t *testing.T) {
	cat := catalog.Seed()

	if p, ok := compat.DefaultPersona(cat, "ashley-data-analyst", "ashley-girlfriend"); !ok || p.ID != "ashley-data-analyst" {
		t.Fatalf("expected selected persona to survive, got %v ok=%v", p.ID, ok)
	}
	if p, ok := compat.DefaultPersona(cat, "removed-persona", "ashley-girlfriend"); !ok || p.ID != "ashley-girlfriend" {
		t.Fatalf("expected configured default, got %v ok=%v", p.ID, ok)
	}
	if p, ok := compat.DefaultPersona(cat, "removed", "also-removed"); !ok || p.ID != cat.Personas[0].ID {
		t.Fatalf("expected first catalog entry, got %v ok=%v", p.ID, ok)
	}
	if _, ok := compat.DefaultPersona(catalog.Catalog{}, "x", "y"); ok {
		t.Fatal("expected no persona from an empty catalog")
	}
}
