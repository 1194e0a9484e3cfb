package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minhyannv/mcp-chat-go/pkg/conversation"
	"github.com/minhyannv/mcp-chat-go/pkg/inference"
	loggerpkg "github.com/minhyannv/mcp-chat-go/pkg/logger"
	"github.com/minhyannv/mcp-chat-go/pkg/tools"
)

// Stage names a step of one turn.
type Stage string

const (
	StageAwaitingInput  Stage = "awaiting_input"
	StageFirstInference Stage = "first_inference"
	StageExecutingTools Stage = "executing_tools"
	StageFinalInference Stage = "final_inference"
)

// TurnError reports the stage at which a turn was aborted.
type TurnError struct {
	Stage Stage
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// ToolExecutor invokes a tool by name with parsed arguments.
type ToolExecutor interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Result is the outcome of one turn.
type Result struct {
	// Answers holds the content of every final candidate completion. They are
	// shown to the user but not added to the history.
	Answers []string
	// ToolCalls is the number of tool calls resolved during the turn.
	ToolCalls int
}

// AgentLoop drives the conversation: every user turn gets a tool-triage
// inference call, the requested tool calls, and a final synthesis call.
type AgentLoop struct {
	client   inference.Client
	executor ToolExecutor
	registry *tools.Registry
	history  conversation.History

	logger  loggerpkg.Logger
	verbose bool
}

// New builds an AgentLoop. registry may be empty, in which case no tools are
// offered to the model.
func New(client inference.Client, executor ToolExecutor, registry *tools.Registry, opts ...AgentOption) (*AgentLoop, error) {
	if client == nil {
		return nil, errors.New("inference client is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}
	if registry == nil {
		registry = tools.NewRegistry(nil)
	}
	deps := agentDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	loggerpkg.Debug(deps.verbose, deps.logger, "agent_loop init", map[string]any{
		"tools": registry.Len(),
	})
	return &AgentLoop{
		client:   client,
		executor: executor,
		registry: registry,
		logger:   deps.logger,
		verbose:  deps.verbose,
	}, nil
}

// Run processes one user input. The input is recorded as is, even when blank.
// On error the messages already appended stay in the history.
func (a *AgentLoop) Run(ctx context.Context, userInput string) (Result, error) {
	a.debug("user input", map[string]any{"input": userInput})
	if err := a.history.Append(conversation.UserMessage{Content: userInput}); err != nil {
		return Result{}, &TurnError{Stage: StageAwaitingInput, Err: err}
	}

	a.debug("sending first inference call", map[string]any{"messages": a.history.Len()})
	first, err := a.complete(ctx)
	if err != nil {
		return Result{}, &TurnError{Stage: StageFirstInference, Err: err}
	}
	message := first.Choices[0]
	if err := a.history.Append(message); err != nil {
		return Result{}, &TurnError{Stage: StageFirstInference, Err: err}
	}

	result := Result{}
	if message.HasToolCalls() {
		a.debug("tool calls detected", map[string]any{"count": len(message.ToolCalls)})
		for _, call := range message.ToolCalls {
			content := a.executeToolCall(ctx, call)
			if err := a.history.Append(conversation.ToolMessage{
				CallID:  call.ID,
				Name:    call.Name,
				Content: content,
			}); err != nil {
				return result, &TurnError{Stage: StageExecutingTools, Err: err}
			}
			result.ToolCalls++
		}
	} else {
		a.debug("no tool calls were made by the model", nil)
	}

	a.debug("sending final inference call", map[string]any{"messages": a.history.Len()})
	final, err := a.complete(ctx)
	if err != nil {
		return result, &TurnError{Stage: StageFinalInference, Err: err}
	}
	for _, choice := range final.Choices {
		a.debug("final response", map[string]any{"content": choice.Content})
		result.Answers = append(result.Answers, choice.Content)
	}
	return result, nil
}

// History returns a snapshot of the conversation so far.
func (a *AgentLoop) History() []conversation.Message {
	return a.history.Messages()
}

// Tools returns the descriptors offered to the model.
func (a *AgentLoop) Tools() []tools.Descriptor {
	return a.registry.Descriptors()
}

func (a *AgentLoop) complete(ctx context.Context) (inference.Response, error) {
	resp, err := a.client.Complete(ctx, inference.Request{
		Messages: a.history.Messages(),
		Tools:    a.registry.Definitions(),
	})
	if err != nil {
		return inference.Response{}, err
	}
	if len(resp.Choices) == 0 {
		return inference.Response{}, errors.New("empty completion choices")
	}
	return resp, nil
}

// executeToolCall resolves one tool call. Failures are returned as an error
// payload for the model instead of aborting the turn.
func (a *AgentLoop) executeToolCall(ctx context.Context, call conversation.ToolCall) string {
	a.debug("tool call", map[string]any{"tool": call.Name, "id": call.ID, "args": call.Arguments})

	if err := ctx.Err(); err != nil {
		return a.toolFailure(call, err)
	}
	if _, ok := a.registry.Lookup(call.Name); !ok {
		return a.toolFailure(call, fmt.Errorf("unknown tool: %s", call.Name))
	}
	args, err := parseArguments(call.Arguments)
	if err != nil {
		return a.toolFailure(call, err)
	}

	output, err := a.executor.CallTool(ctx, call.Name, args)
	if err != nil {
		return a.toolFailure(call, err)
	}
	a.debug("tool result", map[string]any{"tool": call.Name, "result": output})
	return output
}

func (a *AgentLoop) toolFailure(call conversation.ToolCall, err error) string {
	loggerpkg.Warn(a.logger, "tool call failed", map[string]any{
		"tool":  call.Name,
		"id":    call.ID,
		"error": err,
	})
	return tools.ErrorResult(call.Name, err)
}

// parseArguments decodes the model's argument text into a JSON object.
func parseArguments(text string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(text), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func (a *AgentLoop) debug(msg string, obj any) {
	loggerpkg.Debug(a.verbose, a.logger, msg, obj)
}
