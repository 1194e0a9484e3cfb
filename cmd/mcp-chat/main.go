// Package main provides an interactive CLI that lets a chat model call the
// tools of an MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/minhyannv/mcp-chat-go/pkg/agent"
	configpkg "github.com/minhyannv/mcp-chat-go/pkg/config"
	"github.com/minhyannv/mcp-chat-go/pkg/inference"
	loggerpkg "github.com/minhyannv/mcp-chat-go/pkg/logger"
	"github.com/minhyannv/mcp-chat-go/pkg/tools"
	"github.com/minhyannv/mcp-chat-go/pkg/toolserver"
	"github.com/urfave/cli/v3"
)

// main is the program entry point.
func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCommand(os.Args).Run(ctx, os.Args)
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. The YAML config file, when given, is read before
// flag parsing so that it can act as a value source.
func newCommand(args []string) *cli.Command {
	var configData map[string]any
	if path := configpkg.ConfigPath(args, os.Getenv("MCP_CHAT_CONFIG")); path != "" {
		data, err := configpkg.LoadFile(path)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", path, err)
		} else {
			configData = data
		}
	}

	return &cli.Command{
		Name:   "mcp-chat",
		Usage:  "chat with a model that can call the tools of an MCP server",
		Flags:  configpkg.Flags(configData),
		Action: run,
	}
}

// run acquires the inference client and the tool server for the whole
// session, then hands control to the REPL.
func run(ctx context.Context, cmd *cli.Command) error {
	cfg := configpkg.FromCommand(cmd)
	if err := configpkg.Validate(cfg); err != nil {
		return err
	}

	appLogger := loggerpkg.NewWriterLogger(os.Stderr)
	loggerpkg.Debug(cfg.Verbose, appLogger, "configuration loaded", map[string]any{
		"endpoint": cfg.Endpoint,
		"model":    cfg.Model,
		"server":   cfg.ServerCommand,
	})

	client, err := inference.NewOpenAIClient(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("init inference client: %w", err)
	}

	session, err := toolserver.Launch(ctx, cfg.ServerCommand, cfg.ServerEnv,
		toolserver.WithLogger(appLogger),
		toolserver.WithVerbose(cfg.Verbose),
	)
	if err != nil {
		return fmt.Errorf("start tool server: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			loggerpkg.Warn(appLogger, "close tool server", map[string]any{"error": err})
		}
	}()

	descriptors, err := session.ListTools(ctx)
	if err != nil {
		return err
	}
	loggerpkg.Debug(cfg.Verbose, appLogger, "tools found", map[string]any{"count": len(descriptors)})
	for _, d := range descriptors {
		loggerpkg.Debug(cfg.Verbose, appLogger, "tool", map[string]any{
			"name":        d.Name,
			"description": d.Description,
		})
	}

	loop, err := agent.New(client, session, tools.NewRegistry(descriptors),
		agent.WithLogger(appLogger),
		agent.WithVerbose(cfg.Verbose),
	)
	if err != nil {
		return err
	}

	return runREPL(ctx, loop, replOptions{
		Verbose: cfg.Verbose,
		Logger:  appLogger,
	}, os.Stdin, os.Stdout)
}
