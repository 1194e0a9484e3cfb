package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := Normalize(Config{
		Endpoint:  "  https://example.openai.azure.com/ ",
		Model:     "   ",
		ServerEnv: []string{"AZURE_TENANT_ID", " ", "AZURE_TENANT_ID", "AZURE_CLIENT_ID"},
	})

	if cfg.Endpoint != "https://example.openai.azure.com/" {
		t.Fatalf("endpoint not trimmed: %q", cfg.Endpoint)
	}
	if cfg.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", cfg.Model)
	}
	if cfg.APIVersion != DefaultAPIVersion {
		t.Fatalf("expected default api version, got %q", cfg.APIVersion)
	}
	want := []string{"AZURE_TENANT_ID", "AZURE_CLIENT_ID"}
	if !reflect.DeepEqual(cfg.ServerEnv, want) {
		t.Fatalf("unexpected server env %v", cfg.ServerEnv)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "azure endpoint without key",
			cfg:  Config{Endpoint: "https://x", Model: "m", ServerCommand: "srv"},
		},
		{
			name: "api key without endpoint",
			cfg:  Config{APIKey: "k", Model: "m", ServerCommand: "srv"},
		},
		{
			name: "base url without key",
			cfg:  Config{BaseURL: "http://localhost:11434/v1", Model: "m", ServerCommand: "srv"},
		},
		{
			name:    "no endpoint and no key",
			cfg:     Config{Model: "m", ServerCommand: "srv"},
			wantErr: "AZURE_OPENAI_ENDPOINT",
		},
		{
			name:    "missing server",
			cfg:     Config{Endpoint: "https://x", Model: "m"},
			wantErr: "server command",
		},
		{
			name:    "missing model",
			cfg:     Config{Endpoint: "https://x", ServerCommand: "srv"},
			wantErr: "model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp-chat.yaml")
	content := `endpoint: https://example.openai.azure.com/
model: gpt-4o
server_env:
  - AZURE_TENANT_ID
  - AZURE_CLIENT_ID
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	data, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if data["model"] != "gpt-4o" {
		t.Fatalf("unexpected model %v", data["model"])
	}

	src := &YamlSource{data: data, key: "server_env"}
	got, ok := src.Lookup()
	if !ok || got != "AZURE_TENANT_ID,AZURE_CLIENT_ID" {
		t.Fatalf("unexpected slice lookup %q ok=%v", got, ok)
	}
	if _, ok := (&YamlSource{data: data, key: "missing"}).Lookup(); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		args []string
		env  string
		want string
	}{
		{args: []string{"mcp-chat", "--config", "a.yaml"}, want: "a.yaml"},
		{args: []string{"mcp-chat", "--config=b.yaml"}, want: "b.yaml"},
		{args: []string{"mcp-chat", "-c", "c.yaml"}, env: "env.yaml", want: "c.yaml"},
		{args: []string{"mcp-chat"}, env: " env.yaml ", want: "env.yaml"},
		{args: []string{"mcp-chat", "--verbose"}, want: ""},
	}
	for _, tt := range tests {
		if got := ConfigPath(tt.args, tt.env); got != tt.want {
			t.Fatalf("ConfigPath(%v, %q) = %q, want %q", tt.args, tt.env, got, tt.want)
		}
	}
}

func TestFlagsResolveEnvThenYamlThenDefault(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://env.openai.azure.com/")
	for _, key := range []string{"AZURE_OPENAI_MODEL", "AZURE_OPENAI_API_KEY", "OPENAI_API_KEY", "MCP_CHAT_SERVER"} {
		unsetenv(t, key)
	}

	yamlData := map[string]any{
		"endpoint": "https://yaml.openai.azure.com/",
		"model":    "gpt-4o",
	}

	var got Config
	cmd := &cli.Command{
		Name:  "mcp-chat",
		Flags: Flags(yamlData),
		Action: func(_ context.Context, cmd *cli.Command) error {
			got = FromCommand(cmd)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"mcp-chat"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got.Endpoint != "https://env.openai.azure.com/" {
		t.Fatalf("expected env endpoint, got %q", got.Endpoint)
	}
	if got.Model != "gpt-4o" {
		t.Fatalf("expected yaml model, got %q", got.Model)
	}
	if got.ServerCommand != DefaultServerCommand {
		t.Fatalf("expected default server, got %q", got.ServerCommand)
	}
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}
