package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel         = "gpt-4.1-mini"
	DefaultAPIVersion    = "2024-04-01-preview"
	DefaultServerCommand = "npx -y @azure/mcp@latest server start"
)

// Config holds all runtime configuration for a chat session.
type Config struct {
	// Endpoint is the Azure OpenAI endpoint. When empty, BaseURL (or the public
	// OpenAI API) is used instead.
	Endpoint   string
	APIVersion string
	APIKey     string
	BaseURL    string
	Model      string

	// ServerCommand is the command line used to launch the tool server.
	ServerCommand string
	// ServerEnv lists extra environment variable names inherited by the tool server.
	ServerEnv []string

	Verbose bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		APIVersion:    DefaultAPIVersion,
		Model:         DefaultModel,
		ServerCommand: DefaultServerCommand,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.APIVersion = strings.TrimSpace(cfg.APIVersion)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.ServerCommand = strings.TrimSpace(cfg.ServerCommand)

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	env := make([]string, 0, len(cfg.ServerEnv))
	seen := map[string]struct{}{}
	for _, name := range cfg.ServerEnv {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		env = append(env, name)
	}
	cfg.ServerEnv = env
	return cfg
}

// Validate reports configuration that cannot start a session.
func Validate(cfg Config) error {
	if cfg.Model == "" {
		return errors.New("model is not set")
	}
	if cfg.ServerCommand == "" {
		return errors.New("server command is not set")
	}
	if cfg.Endpoint == "" && cfg.BaseURL == "" && cfg.APIKey == "" {
		return errors.New("AZURE_OPENAI_ENDPOINT is not set and no API key or base URL was provided")
	}
	return nil
}

// LoadFile reads a YAML config file into a flat key/value map.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
