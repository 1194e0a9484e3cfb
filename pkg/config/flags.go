package config

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// YamlSource implements cli.ValueSource for a map loaded from YAML.
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	v, ok := y.data[y.key]
	if !ok || v == nil {
		return "", false
	}
	if slice, ok := v.([]any); ok {
		strs := make([]string, 0, len(slice))
		for _, item := range slice {
			strs = append(strs, fmt.Sprintf("%v", item))
		}
		return strings.Join(strs, ","), true
	}
	return fmt.Sprintf("%v", v), true
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

// ConfigPath returns the value of --config (or -c) from raw arguments, falling
// back to the given environment value.
func ConfigPath(args []string, envValue string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "-config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		}
	}
	return strings.TrimSpace(envValue)
}

// Flags returns the command-line flags. Each flag resolves from its
// environment variables, then from configData, then from its default.
func Flags(configData map[string]any) []cli.Flag {
	defaults := DefaultConfig()
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file", Sources: cli.EnvVars("MCP_CHAT_CONFIG")},
		&cli.StringFlag{Name: "endpoint", Usage: "Azure OpenAI endpoint", Sources: src("endpoint", "AZURE_OPENAI_ENDPOINT")},
		&cli.StringFlag{Name: "model", Value: defaults.Model, Usage: "model or deployment name", Sources: src("model", "AZURE_OPENAI_MODEL")},
		&cli.StringFlag{Name: "api-version", Value: defaults.APIVersion, Usage: "Azure OpenAI API version", Sources: src("api_version", "AZURE_OPENAI_API_VERSION")},
		&cli.StringFlag{Name: "api-key", Usage: "API key (Azure default credentials are used when empty)", Sources: src("api_key", "AZURE_OPENAI_API_KEY", "OPENAI_API_KEY")},
		&cli.StringFlag{Name: "base-url", Usage: "OpenAI-compatible base URL, used when no endpoint is set; the API key is optional", Sources: src("base_url", "OPENAI_BASE_URL")},
		&cli.StringFlag{Name: "server", Value: defaults.ServerCommand, Usage: "command line that launches the MCP tool server", Sources: src("server", "MCP_CHAT_SERVER")},
		&cli.StringSliceFlag{Name: "server-env", Usage: "environment variable passed through to the tool server (repeatable)", Sources: src("server_env", "MCP_CHAT_SERVER_ENV")},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print debug trace lines", Sources: src("verbose", "MCP_CHAT_VERBOSE")},
	}
}

// FromCommand builds a normalized Config from parsed flags.
func FromCommand(cmd *cli.Command) Config {
	return Normalize(Config{
		Endpoint:      cmd.String("endpoint"),
		APIVersion:    cmd.String("api-version"),
		APIKey:        cmd.String("api-key"),
		BaseURL:       cmd.String("base-url"),
		Model:         cmd.String("model"),
		ServerCommand: cmd.String("server"),
		ServerEnv:     cmd.StringSlice("server-env"),
		Verbose:       cmd.Bool("verbose"),
	})
}
