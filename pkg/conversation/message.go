// Package conversation holds the chat message types and the append-only history
// sent to the model on every request.
package conversation

// Role is the role for a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation. It is implemented only by
// UserMessage, AssistantMessage and ToolMessage.
type Message interface {
	Role() Role
	isMessage()
}

// UserMessage is a prompt typed by the user. Content may be empty.
type UserMessage struct {
	Content string
}

// AssistantMessage is a model reply, optionally requesting tool calls.
type AssistantMessage struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolMessage carries the result of one tool call back to the model.
type ToolMessage struct {
	CallID  string
	Name    string
	Content string
}

// ToolCall is a model-issued request to invoke a tool. Arguments is the raw
// JSON text produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func (UserMessage) Role() Role      { return RoleUser }
func (AssistantMessage) Role() Role { return RoleAssistant }
func (ToolMessage) Role() Role      { return RoleTool }

func (UserMessage) isMessage()      {}
func (AssistantMessage) isMessage() {}
func (ToolMessage) isMessage()      {}

// HasToolCalls reports whether the assistant requested any tool invocation.
func (m AssistantMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

func (m AssistantMessage) clone() AssistantMessage {
	if m.ToolCalls != nil {
		m.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
	}
	return m
}
