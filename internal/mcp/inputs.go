package mcp

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// toolInputs satisfies the interactive capability ports from tool
// arguments. Handlers stage values before driving the session manager;
// MCP stdio serves one call at a time, the mutex only guards against
// misuse.
type toolInputs struct {
	mu sync.Mutex

	password string

	command    string
	hasCommand bool

	curlib string
	libl   string
}

func (t *toolInputs) stage(password, command string, hasCommand bool, curlib, libl string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.password = password
	t.command = command
	t.hasCommand = hasCommand
	t.curlib = curlib
	t.libl = libl
}

// AskPassword returns the staged password; empty behaves like a
// dismissed prompt.
func (t *toolInputs) AskPassword(ctx context.Context, identity string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.password, nil
}

// EditCommand substitutes the staged command when one was supplied and
// otherwise accepts the remembered default unchanged. Tool callers
// cannot cancel an edit.
func (t *toolInputs) EditCommand(ctx context.Context, initial string) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasCommand {
		return t.command, true, nil
	}
	return initial, true, nil
}

// LookupEnv serves workspace CURLIB/LIBL overrides from tool arguments.
func (t *toolInputs) LookupEnv(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch name {
	case "CURLIB":
		return t.curlib, t.curlib != ""
	case "LIBL":
		return t.libl, t.libl != ""
	}
	return "", false
}

// recordingNotifier collects user-visible notices so handlers can fold
// them into tool results. One-click actions are never auto-taken; the
// cleanup tool ends jobs explicitly instead.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	logger   zerolog.Logger
}

func (n *recordingNotifier) Info(message string) { n.append("info", message) }
func (n *recordingNotifier) Warn(message string) { n.append("warn", message) }
func (n *recordingNotifier) Error(message string) {
	n.append("error", message)
}

func (n *recordingNotifier) OfferAction(message, action string) bool {
	n.append("info", message)
	return false
}

func (n *recordingNotifier) append(level, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
	n.logger.WithLevel(levelOf(level)).Msg(message)
}

// drain returns and clears the collected notices.
func (n *recordingNotifier) drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.messages
	n.messages = nil
	return out
}

func levelOf(level string) zerolog.Level {
	switch level {
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
