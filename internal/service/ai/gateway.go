// Package ai implements the chat gateway on top of the eino framework
// and the Ark model family. One compiled chain is kept per model id.
package ai

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/ashleyhq/chat-backend/internal/config"
	"github.com/ashleyhq/chat-backend/internal/model/catalog"
	"github.com/ashleyhq/chat-backend/internal/model/chat"
	"github.com/ashleyhq/chat-backend/internal/service/dispatch"
)

// CatalogSource resolves persona metadata for prompt building.
type CatalogSource interface {
	Persona(id string) (catalog.PersonaOption, bool)
}

// Service is the production dispatch.Gateway.
type Service struct {
	cfg      config.AIConfig
	personas CatalogSource

	mu     sync.Mutex
	chains map[string]compose.Runnable[map[string]any, *schema.Message]
}

// NewService wires the gateway. Chains are compiled lazily per model.
func NewService(cfg config.AIConfig, personas CatalogSource) *Service {
	return &Service{
		cfg:      cfg,
		personas: personas,
		chains:   make(map[string]compose.Runnable[map[string]any, *schema.Message]),
	}
}

// Send runs one request through the model chain. Context cancellation
// aborts the call; the dispatcher identifies the abort by ctx.Err().
func (s *Service) Send(ctx context.Context, req dispatch.Request) (dispatch.Response, error) {
	if len(req.Turns) == 0 {
		return dispatch.Response{}, fmt.Errorf("empty request history")
	}

	runnable, err := s.chainFor(ctx, req.ModelID)
	if err != nil {
		return dispatch.Response{}, err
	}

	persona, _ := s.personas.Persona(req.PersonaID)
	query := req.Turns[len(req.Turns)-1].Content
	input := map[string]any{
		"system":  BuildSystemPrompt(persona),
		"history": historyMessages(req.Turns[:len(req.Turns)-1]),
		"query":   query,
	}

	response, err := runnable.Invoke(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return dispatch.Response{}, ctx.Err()
		}
		return dispatch.Response{}, fmt.Errorf("run chat chain: %w", err)
	}

	log.Printf("[ai] generated reply persona=%s model=%s length=%d", req.PersonaID, req.ModelID, len(response.Content))

	out := dispatch.Response{Message: response.Content}
	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		out.Usage = &dispatch.Usage{
			PromptTokens:     response.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: response.ResponseMeta.Usage.CompletionTokens,
		}
	}
	return out, nil
}

func (s *Service) chainFor(ctx context.Context, modelID string) (compose.Runnable[map[string]any, *schema.Message], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runnable, ok := s.chains[modelID]; ok {
		return runnable, nil
	}

	chatModel, err := s.cfg.NewChatModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("create chat model for %q: %w", modelID, err)
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	s.chains[modelID] = runnable
	return runnable, nil
}

func historyMessages(turns []dispatch.Turn) []*schema.Message {
	const historyLimit = 10

	start := 0
	if len(turns) > historyLimit {
		start = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-start)
	for _, turn := range turns[start:] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
