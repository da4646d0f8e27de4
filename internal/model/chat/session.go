package chat

import "time"

// DefaultTitle is the placeholder a session carries until the deferred
// title derivation or a manual rename replaces it.
const DefaultTitle = "New Chat"

// Usage accumulates gateway-reported token consumption for a session.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Add folds one gateway response's counters into the running totals.
func (u *Usage) Add(prompt, completion int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += prompt + completion
}

// Session is one conversation thread with its own transcript and
// persona/model selection.
type Session struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Messages        []Message `json:"messages"`
	PersonaID       string    `json:"personaId"`
	ModelID         string    `json:"modelId"`
	ManuallyRenamed bool      `json:"manuallyRenamed"`
	Usage           Usage     `json:"usage"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
