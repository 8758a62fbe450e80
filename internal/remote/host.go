// Package remote models the IBM i host connection boundary.
//
// The actual connection (shell sessions, SQL sessions, file transfer) is
// owned by the surrounding application and consumed here as three small
// capabilities. The query and command text sent over those capabilities
// is an internal detail of the typed adapters in this package; callers
// work against request/response contracts only.
package remote

import "context"

// CommandResult is the outcome of one remote command invocation.
type CommandResult struct {
	Code   int
	Stdout string
	Stderr string
}

// CommandRunner runs a shell (PASE) or CL command on the remote host.
type CommandRunner interface {
	RunCommand(ctx context.Context, command string) (CommandResult, error)
}

// QueryRunner runs an SQL query and returns rows as column-name maps.
type QueryRunner interface {
	Query(ctx context.Context, sql string) ([]map[string]string, error)
}

// FileTransfer checks for and downloads remote files.
type FileTransfer interface {
	// Stat returns size and a modification stamp for a remote path,
	// or exists=false when the path is absent.
	Stat(ctx context.Context, remotePath string) (size int64, modified int64, exists bool, err error)

	// Download copies a remote file to a local path, creating parent
	// directories as needed.
	Download(ctx context.Context, remotePath, localPath string) error
}

// Host bundles the three capabilities one connection provides.
type Host interface {
	CommandRunner
	QueryRunner
	FileTransfer

	// CurrentUser is the profile the connection authenticated as.
	CurrentUser() string
}
