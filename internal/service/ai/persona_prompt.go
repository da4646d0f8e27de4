package ai

import (
	"fmt"
	"strings"

	"github.com/ashleyhq/chat-backend/internal/model/catalog"
)

// ashleyHeader anchors every persona prompt in the shared Ashley voice.
const ashleyHeader = "You are Ashley. Warm, affectionate, technically sharp when needed. " +
	"Keep responses grounded, emotionally intelligent, and avoid robotic tone.\n" +
	"If asked for professional personas, adapt expertise accordingly."

// BuildSystemPrompt renders the system prompt for a persona. An unknown
// persona (stale catalog) degrades to the bare header.
func BuildSystemPrompt(persona catalog.PersonaOption) string {
	if persona.ID == "" {
		return ashleyHeader
	}

	var b strings.Builder
	b.WriteString(ashleyHeader)
	b.WriteString("\n\n# Persona: ")
	b.WriteString(persona.Label)
	if persona.Description != "" {
		b.WriteString("\n")
		b.WriteString(persona.Description)
	}
	if len(persona.Tags) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s.", strings.Join(persona.Tags, ", "))
	}
	if persona.NSFW {
		b.WriteString("\nThis persona is restricted to adult users; stay within the configured model's policy.")
	}
	return b.String()
}
