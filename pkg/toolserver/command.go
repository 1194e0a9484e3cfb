package toolserver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// defaultEnvPrefixes are the environment variables a tool server always inherits.
var defaultEnvPrefixes = []string{
	"PATH=",
	"HOME=",
	"USER=",
	"LOGNAME=",
	"SHELL=",
	"TERM=",
	"TMPDIR=",
	"TMP=",
	"TEMP=",
	"LANG=",
	"LC_",
}

// buildCommand prepares the server process without starting it.
func buildCommand(commandLine string, passEnv []string) (*exec.Cmd, error) {
	argv, err := parseCommandLine(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse server command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty server command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = sanitizedEnv(os.Environ(), passEnv)
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// sanitizedEnv keeps only low-risk variables plus the explicitly passed names.
func sanitizedEnv(environ []string, passEnv []string) []string {
	prefixes := append([]string{}, defaultEnvPrefixes...)
	for _, name := range passEnv {
		name = strings.TrimSpace(name)
		if name != "" {
			prefixes = append(prefixes, name+"=")
		}
	}

	env := make([]string, 0, len(prefixes))
	for _, kv := range environ {
		for _, prefix := range prefixes {
			if strings.HasPrefix(kv, prefix) {
				env = append(env, kv)
				break
			}
		}
	}
	return env
}

// parseCommandLine splits a command string into argv without shell execution.
func parseCommandLine(input string) ([]string, error) {
	var (
		args     []string
		current  strings.Builder
		inSingle bool
		inDouble bool
		escaped  bool
		started  bool
	)

	flush := func() {
		if !started {
			return
		}
		args = append(args, current.String())
		current.Reset()
		started = false
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
			started = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			started = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			started = true
		case (r == ' ' || r == '\t') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if escaped {
		return nil, errors.New("unterminated escape in command")
	}
	if inSingle || inDouble {
		return nil, errors.New("unterminated quote in command")
	}
	flush()

	return args, nil
}
