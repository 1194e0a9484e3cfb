// Package toolserver talks to an MCP tool server running as a child process:
// it discovers the advertised tools and invokes them on request.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	loggerpkg "github.com/minhyannv/mcp-chat-go/pkg/logger"
	"github.com/minhyannv/mcp-chat-go/pkg/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	clientName    = "mcp-chat-go"
	clientVersion = "1.0.0"
)

// ToolError is returned when a tool ran but reported a failure.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool %s reported an error", e.Tool)
	}
	return fmt.Sprintf("tool %s reported an error: %s", e.Tool, e.Message)
}

// Option configures optional dependencies for a Session.
type Option func(*options)

type options struct {
	logger  loggerpkg.Logger
	verbose bool
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithVerbose enables debug trace lines.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
	}
}

// Session is a connected tool server. It is acquired once per process and
// must be released with Close.
type Session struct {
	session *mcp.ClientSession
	logger  loggerpkg.Logger
	verbose bool
}

// Launch starts the tool server described by commandLine and connects to it
// over stdio. passEnv names extra environment variables the server inherits.
func Launch(ctx context.Context, commandLine string, passEnv []string, opts ...Option) (*Session, error) {
	cmd, err := buildCommand(commandLine, passEnv)
	if err != nil {
		return nil, err
	}
	return Connect(ctx, &mcp.CommandTransport{Command: cmd}, opts...)
}

// Connect performs the protocol handshake over an existing transport.
func Connect(ctx context.Context, transport mcp.Transport, opts ...Option) (*Session, error) {
	o := options{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}, nil)

	loggerpkg.Debug(o.verbose, o.logger, "connecting to tool server", nil)
	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to tool server: %w", err)
	}
	loggerpkg.Debug(o.verbose, o.logger, "tool server session initialized", nil)

	return &Session{
		session: cs,
		logger:  o.logger,
		verbose: o.verbose,
	}, nil
}

// ListTools returns every tool the server advertises, in the order returned.
func (s *Session) ListTools(ctx context.Context) ([]tools.Descriptor, error) {
	var out []tools.Descriptor
	for tool, err := range s.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		if tool == nil {
			continue
		}
		params, err := schemaMap(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: input schema: %w", tool.Name, err)
		}
		out = append(out, tools.Descriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		})
	}
	loggerpkg.Debug(s.verbose, s.logger, "tools listed", map[string]any{"count": len(out)})
	return out, nil
}

// CallTool invokes name with args and returns the rendered result content.
// A result flagged as an error is returned as *ToolError.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	res, err := s.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}

	content := renderContent(res.Content)
	if content == "" && res.StructuredContent != nil {
		if data, err := json.Marshal(res.StructuredContent); err == nil {
			content = string(data)
		}
	}
	loggerpkg.Debug(s.verbose, s.logger, "tool result", map[string]any{
		"tool":     name,
		"is_error": res.IsError,
		"bytes":    len(content),
	})
	if res.IsError {
		return content, &ToolError{Tool: name, Message: content}
	}
	return content, nil
}

// Close ends the session and releases the server process.
func (s *Session) Close() error {
	if s == nil || s.session == nil {
		return nil
	}
	err := s.session.Close()
	loggerpkg.Debug(s.verbose, s.logger, "tool server session closed", nil)
	return err
}

// renderContent joins text items with newlines; other items are rendered as JSON.
func renderContent(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		switch v := c.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		case nil:
		default:
			data, err := json.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprintf("%v", v))
				continue
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

// schemaMap converts an advertised schema to the plain JSON object form.
func schemaMap(schema any) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}
	if m, ok := schema.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.New("schema is not a JSON object")
	}
	return out, nil
}
