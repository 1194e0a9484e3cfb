package agent

import loggerpkg "github.com/minhyannv/mcp-chat-go/pkg/logger"

// AgentOption configures optional runtime dependencies for AgentLoop.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger  loggerpkg.Logger
	verbose bool
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithVerbose enables debug trace lines for every stage of a turn.
func WithVerbose(verbose bool) AgentOption {
	return func(d *agentDeps) {
		d.verbose = verbose
	}
}
