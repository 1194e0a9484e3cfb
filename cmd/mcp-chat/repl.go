package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minhyannv/mcp-chat-go/pkg/agent"
	loggerpkg "github.com/minhyannv/mcp-chat-go/pkg/logger"
	"github.com/minhyannv/mcp-chat-go/pkg/tools"
)

// maxPromptBytes bounds a single input line.
const maxPromptBytes = 16 << 20

// turnRunner is the part of agent.AgentLoop the REPL needs.
type turnRunner interface {
	Run(ctx context.Context, input string) (agent.Result, error)
	Tools() []tools.Descriptor
}

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// runREPL reads one prompt per line until the input ends, the context is
// canceled, or the user quits. Errors inside a turn are reported and the loop
// keeps going.
func runREPL(ctx context.Context, app turnRunner, opts replOptions, in io.Reader, out io.Writer) error {
	if app == nil {
		return fmt.Errorf("agent loop is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "entering conversational loop", nil)
	lines, scanErr := readLines(ctx, in)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "\nPrompt: ")

		var input string
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(out)
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return nil
			}
			input = line
		}

		handled, shouldQuit := handleCommand(input, app, out)
		if shouldQuit {
			return nil
		}
		if handled {
			continue
		}

		result, err := app.Run(ctx, input)
		if err != nil {
			fields := map[string]any{"error": err}
			var turnErr *agent.TurnError
			if errors.As(err, &turnErr) {
				fields["stage"] = string(turnErr.Stage)
			}
			loggerpkg.Error(opts.Logger, "error in conversation loop", fields)
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		for _, answer := range result.Answers {
			_, _ = fmt.Fprintln(out, answer)
		}
	}
}

// readLines scans in on its own goroutine so that the REPL can stop on
// context cancellation while a read is pending. scanErr receives exactly one
// value once lines is closed; cancellation is not reported as an error.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxPromptBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "=== MCP Chat - Interactive Mode ===")
	_, _ = fmt.Fprintln(out, "Type your prompt and press Enter. Type /help for commands.")
}

// handleCommand runs a REPL command. Only exact command lines are treated as
// commands; anything else is a prompt.
func handleCommand(input string, app turnRunner, out io.Writer) (bool, bool) {
	switch input {
	case "/help":
		printHelp(out)
		return true, false
	case "/tools":
		printTools(out, app.Tools())
		return true, false
	case "/quit", "/exit":
		_, _ = fmt.Fprintln(out, "Goodbye!")
		return true, true
	default:
		return false, false
	}
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /tools - List the tools offered to the model")
	_, _ = fmt.Fprintln(out, "  /quit  - Exit the program")
	_, _ = fmt.Fprintln(out, "  /exit  - Exit the program")
}

func printTools(out io.Writer, descriptors []tools.Descriptor) {
	if len(descriptors) == 0 {
		_, _ = fmt.Fprintln(out, "No tools available.")
		return
	}
	for _, d := range descriptors {
		_, _ = fmt.Fprintf(out, "  %s - %s\n", d.Name, d.Description)
	}
}
