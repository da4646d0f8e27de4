// Package compat picks a valid model id for a persona from a
// prioritized candidate list. Resolution is total: it always terminates
// with a member of the persona's allowed set or the "auto" sentinel.
package compat

import (
	"strings"

	"github.com/ashleyhq/chat-backend/internal/model/catalog"
)

// ResolveModel returns the first candidate from
// [requested, persona default, previous, "auto"] that the persona
// allows. Personas that constrain nothing allow only "auto".
func ResolveModel(persona catalog.PersonaOption, requestedModelID, previousModelID string) string {
	allowed := persona.AllowedModelIDs
	if len(allowed) == 0 {
		allowed = []string{catalog.AutoModelID}
	}

	candidates := []string{requestedModelID, persona.DefaultModel, previousModelID, catalog.AutoModelID}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		for _, id := range allowed {
			if id == candidate {
				return candidate
			}
		}
	}
	return catalog.AutoModelID
}

// DefaultPersona picks the bootstrap persona: the currently selected id
// if the catalog still carries it, else the configured default, else
// the first catalog entry.
func DefaultPersona(cat catalog.Catalog, selectedID, configuredDefault string) (catalog.PersonaOption, bool) {
	if p, ok := cat.Persona(selectedID); ok {
		return p, true
	}
	if p, ok := cat.Persona(configuredDefault); ok {
		return p, true
	}
	if len(cat.Personas) > 0 {
		return cat.Personas[0], true
	}
	return catalog.PersonaOption{}, false
}
