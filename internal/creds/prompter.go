package creds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter reads a password from the controlling terminal
// without echo.
type TerminalPrompter struct{}

// AskPassword prompts on stderr and reads from stdin. Ctrl-D yields an
// empty password, treated as a dismissed prompt.
func (TerminalPrompter) AskPassword(ctx context.Context, identity string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", identity)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// StaticPrompter returns a pre-supplied password, used by tool surfaces
// where the caller passes credentials as arguments. An empty value
// behaves like a dismissed prompt.
type StaticPrompter struct {
	Password string
}

func (p StaticPrompter) AskPassword(ctx context.Context, identity string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Password, nil
}
