package dispatch

import (
	"context"
	"errors"
)

// Turn is one role+content pair exchanged with the remote gateway.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for one gateway call.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// Request carries the full ordered history plus the persona and the
// resolved model id for one dispatch.
type Request struct {
	Turns     []Turn `json:"messages"`
	PersonaID string `json:"persona"`
	ModelID   string `json:"modelId"`
}

// Response is the validated gateway reply. Either Turns carries a full
// replacement transcript or Message carries a single assistant reply;
// both may be empty, in which case the dispatcher synthesizes a
// fallback assistant message.
type Response struct {
	Message string `json:"message,omitempty"`
	Turns   []Turn `json:"messages,omitempty"`
	Usage   *Usage `json:"usage,omitempty"`
}

// Gateway is the remote chat service. Implementations must honor ctx
// cancellation and return ctx.Err() for an aborted call, with no
// observable side effect on the caller's state.
type Gateway interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// ErrGatewayUnavailable is returned by DisabledGateway.
var ErrGatewayUnavailable = errors.New("chat gateway is not configured")

// DisabledGateway stands in when no model credentials are configured.
// Every send fails, which the dispatcher converts into an in-session
// error message.
type DisabledGateway struct{}

// Send always fails.
func (DisabledGateway) Send(_ context.Context, _ Request) (Response, error) {
	return Response{}, ErrGatewayUnavailable
}
