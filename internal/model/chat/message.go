package chat

import "time"

// Roles a transcript message may carry. Ordering inside a session is
// insertion order and is never rewritten after the fact.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable turn of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	PersonaID string    `json:"personaId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
