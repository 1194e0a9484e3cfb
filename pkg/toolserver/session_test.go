package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer runs an in-memory tool server and returns a connected Session.
func startServer(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "v0.0.1"}, nil)
	server.AddTool(&mcp.Tool{
		Name:        "list_resources",
		Description: "List resources in a subscription",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"subscription": {Type: "string"},
			},
		},
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, err
			}
		}
		if sub, _ := args["subscription"].(string); sub != "" {
			return &mcp.CallToolResult{Content: []mcp.Content{
				&mcp.TextContent{Text: `["vm-1"]`},
				&mcp.TextContent{Text: "subscription=" + sub},
			}}, nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "[]"}}}, nil
	})
	server.AddTool(&mcp.Tool{
		Name:        "fail",
		Description: "Always fails",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "quota exceeded"}},
		}, nil
	})

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	session, err := Connect(ctx, clientTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestListTools(t *testing.T) {
	session := startServer(t)

	descriptors, err := session.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 2)

	byName := map[string]int{}
	for i, d := range descriptors {
		byName[d.Name] = i
	}
	require.Contains(t, byName, "list_resources")
	require.Contains(t, byName, "fail")

	list := descriptors[byName["list_resources"]]
	assert.Equal(t, "List resources in a subscription", list.Description)
	assert.Equal(t, "object", list.Parameters["type"])
	props, ok := list.Parameters["properties"].(map[string]any)
	require.True(t, ok, "properties should be a JSON object: %#v", list.Parameters)
	sub, ok := props["subscription"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", sub["type"])
}

func TestCallToolReturnsText(t *testing.T) {
	session := startServer(t)
	ctx := context.Background()

	out, err := session.CallTool(ctx, "list_resources", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	out, err = session.CallTool(ctx, "list_resources", map[string]any{"subscription": "dev"})
	require.NoError(t, err)
	assert.Equal(t, "[\"vm-1\"]\nsubscription=dev", out)
}

func TestCallToolReportsToolError(t *testing.T) {
	session := startServer(t)

	out, err := session.CallTool(context.Background(), "fail", map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "fail", toolErr.Tool)
	assert.Equal(t, "quota exceeded", out)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCallUnknownToolFails(t *testing.T) {
	session := startServer(t)

	_, err := session.CallTool(context.Background(), "does_not_exist", nil)
	require.Error(t, err)
}

func TestRenderContent(t *testing.T) {
	out := renderContent([]mcp.Content{
		&mcp.TextContent{Text: "first"},
		nil,
		&mcp.ImageContent{MIMEType: "image/png", Data: []byte{1}},
	})
	assert.Contains(t, out, "first\n")
	assert.Contains(t, out, `"mimeType":"image/png"`)
}

func TestSchemaMap(t *testing.T) {
	m, err := schemaMap(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	in := map[string]any{"type": "object"}
	m, err = schemaMap(in)
	require.NoError(t, err)
	assert.Equal(t, in, m)

	m, err = schemaMap(&jsonschema.Schema{Type: "object"})
	require.NoError(t, err)
	assert.Equal(t, "object", m["type"])

	_, err = schemaMap([]string{"not", "an", "object"})
	require.Error(t, err)
}

func TestCloseNilSession(t *testing.T) {
	var s *Session
	assert.NoError(t, s.Close())
}
