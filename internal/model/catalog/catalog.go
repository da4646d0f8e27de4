package catalog

import "sort"

// AutoModelID is the sentinel model id meaning "let the gateway route".
// It is always a legal choice, even when a persona constrains nothing.
const AutoModelID = "auto"

// PersonaOption captures the role-playing attributes exposed to
// selection UIs and consumed by compatibility resolution.
type PersonaOption struct {
	ID                     string   `json:"id"`
	Label                  string   `json:"label"`
	Description            string   `json:"description,omitempty"`
	Tags                   []string `json:"tags,omitempty"`
	Category               string   `json:"category"`
	NSFW                   bool     `json:"nsfw"`
	DefaultModel           string   `json:"defaultModel"`
	AllowedModelCategories []string `json:"allowedModelCategories,omitempty"`
	AllowedModelIDs        []string `json:"allowedModelIds"`
}

// ModelOption describes one selectable backing model.
type ModelOption struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Categories   []string `json:"categories"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// CategoryMeta labels a persona or model category for grouping.
type CategoryMeta struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Catalog is one immutable snapshot of everything the provider knows.
// Two fetches against unchanged backend data compare structurally equal.
type Catalog struct {
	Personas          []PersonaOption         `json:"personas"`
	Models            []ModelOption           `json:"models"`
	PersonaCategories map[string]CategoryMeta `json:"personaCategories"`
	ModelCategories   map[string]CategoryMeta `json:"modelCategories"`
}

// Persona looks up a persona option by id.
func (c Catalog) Persona(id string) (PersonaOption, bool) {
	for _, p := range c.Personas {
		if p.ID == id {
			return p, true
		}
	}
	return PersonaOption{}, false
}

// Model looks up a model option by id.
func (c Catalog) Model(id string) (ModelOption, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelOption{}, false
}

// ResolveAllowedModelIDs computes the allowed model ids for a persona.
// Explicit ids on the persona win; otherwise allowance comes from the
// intersection of the persona's model categories with each model's
// categories. "auto" is always prepended.
func ResolveAllowedModelIDs(p PersonaOption, models []ModelOption) []string {
	var allowed []string
	if len(p.AllowedModelIDs) > 0 {
		allowed = append(allowed, p.AllowedModelIDs...)
	} else {
		wanted := make(map[string]bool, len(p.AllowedModelCategories))
		for _, cat := range p.AllowedModelCategories {
			wanted[cat] = true
		}
		for _, m := range models {
			for _, cat := range m.Categories {
				if wanted[cat] {
					allowed = append(allowed, m.ID)
					break
				}
			}
		}
		sort.Strings(allowed)
	}

	for _, id := range allowed {
		if id == AutoModelID {
			return allowed
		}
	}
	return append([]string{AutoModelID}, allowed...)
}

// Normalize fills in every persona's AllowedModelIDs so downstream
// consumers never have to re-derive them from categories.
func (c Catalog) Normalize() Catalog {
	out := c
	out.Personas = make([]PersonaOption, len(c.Personas))
	copy(out.Personas, c.Personas)
	for i := range out.Personas {
		out.Personas[i].AllowedModelIDs = ResolveAllowedModelIDs(out.Personas[i], c.Models)
	}
	return out
}
