package inference

import (
	"fmt"

	"github.com/minhyannv/mcp-chat-go/pkg/conversation"
	"github.com/openai/openai-go"
)

// toParams maps conversation messages onto request message params.
func toParams(messages []conversation.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, msg := range messages {
		switch m := msg.(type) {
		case conversation.UserMessage:
			out = append(out, openai.UserMessage(m.Content))
		case conversation.AssistantMessage:
			out = append(out, assistantParam(m))
		case conversation.ToolMessage:
			out = append(out, openai.ToolMessage(m.Content, m.CallID))
		default:
			return nil, fmt.Errorf("invalid message at index %d: %T", i, msg)
		}
	}
	return out, nil
}

func assistantParam(m conversation.AssistantMessage) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if m.Content != "" || len(m.ToolCalls) == 0 {
		assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(m.Content),
		}
	}
	for _, call := range m.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func fromCompletionMessage(msg openai.ChatCompletionMessage) conversation.AssistantMessage {
	out := conversation.AssistantMessage{Content: msg.Content}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, conversation.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}
