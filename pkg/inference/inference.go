// Package inference sends the conversation to a chat completions endpoint and
// converts the candidate completions back into conversation messages.
package inference

import (
	"context"

	"github.com/minhyannv/mcp-chat-go/pkg/conversation"
	"github.com/openai/openai-go"
)

// Request is one inference call: the full history plus the tools on offer.
type Request struct {
	Messages []conversation.Message
	Tools    []openai.ChatCompletionToolParam
}

// Response holds every candidate completion returned by the API.
type Response struct {
	Choices []conversation.AssistantMessage
}

// Client proposes the next assistant message for a conversation.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
