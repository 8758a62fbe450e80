package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calock/ibmidbg/internal/config"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/pkg/types"
)

// quietHost is a remote side with nothing installed and, optionally,
// jobs left in message-wait state.
type quietHost struct {
	stuck    []map[string]string
	commands []string
}

func (h *quietHost) RunCommand(ctx context.Context, command string) (remote.CommandResult, error) {
	h.commands = append(h.commands, command)
	return remote.CommandResult{Code: 1}, nil
}

func (h *quietHost) Query(ctx context.Context, sql string) ([]map[string]string, error) {
	if strings.Contains(sql, "ACTIVE_JOB_INFO") {
		return h.stuck, nil
	}
	return nil, nil
}

func (h *quietHost) Stat(ctx context.Context, remotePath string) (int64, int64, bool, error) {
	return 0, 0, false, nil
}

func (h *quietHost) Download(ctx context.Context, remotePath, localPath string) error {
	return nil
}

func (h *quietHost) CurrentUser() string { return "DEV" }

func newTestServer(t *testing.T, host remote.Host) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StateDir = t.TempDir()
	conn := types.Connection{Name: "dev400", Host: "dev400.example.com", User: "dev"}
	return NewServer(cfg, conn, host, zerolog.Nop())
}

func TestCloseSurfacesLeftoverJobs(t *testing.T) {
	host := &quietHost{stuck: []map[string]string{
		{"JOB_NAME": "123456/DEV/MYJOB", "SUBSYSTEM": "QBATCH"},
	}}
	s := newTestServer(t, host)

	s.Close()

	notices := s.notify.drain()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "1 job(s) from an earlier debug session are waiting on a message")
	assert.Contains(t, notices[0], "123456/DEV/MYJOB")

	// Ending jobs stays a user decision; nothing was terminated.
	for _, cmd := range host.commands {
		assert.NotContains(t, cmd, "ENDJOB")
	}
}

func TestCloseQuietWithoutLeftoverJobs(t *testing.T) {
	host := &quietHost{}
	s := newTestServer(t, host)

	s.Close()

	assert.Empty(t, s.notify.drain())
}
