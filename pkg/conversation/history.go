package conversation

import (
	"errors"
	"fmt"
)

// ErrUncorrelatedToolMessage is returned when a tool message does not answer a
// tool call issued earlier in the history.
var ErrUncorrelatedToolMessage = errors.New("tool message does not match any tool call")

// History is the ordered, append-only conversation state.
// The zero value is an empty history ready for use.
type History struct {
	messages []Message
	callIDs  map[string]struct{}
}

// Append adds msg to the end of the history. Tool messages must reference a
// tool call id emitted by a preceding assistant message.
func (h *History) Append(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		h.messages = append(h.messages, m)
	case AssistantMessage:
		m = m.clone()
		if h.callIDs == nil {
			h.callIDs = make(map[string]struct{})
		}
		for _, call := range m.ToolCalls {
			h.callIDs[call.ID] = struct{}{}
		}
		h.messages = append(h.messages, m)
	case ToolMessage:
		if _, ok := h.callIDs[m.CallID]; !ok {
			return fmt.Errorf("%w: %q", ErrUncorrelatedToolMessage, m.CallID)
		}
		h.messages = append(h.messages, m)
	case nil:
		return errors.New("message is nil")
	default:
		return fmt.Errorf("unsupported message type %T", msg)
	}
	return nil
}

// Messages returns a snapshot of the history in chronological order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	for i, msg := range h.messages {
		if m, ok := msg.(AssistantMessage); ok {
			msg = m.clone()
		}
		out[i] = msg
	}
	return out
}

// Len returns the number of messages in the history.
func (h *History) Len() int {
	return len(h.messages)
}
