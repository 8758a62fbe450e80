package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// SSHHost provides the host capabilities over the system ssh and scp
// binaries. SQL runs through db2util with JSON output, the usual
// open-source SQL front end on IBM i.
type SSHHost struct {
	// Target is the ssh destination, user@host.
	Target string

	// User is the profile the connection authenticates as.
	User string

	// DB2UtilPath locates db2util on the remote side.
	DB2UtilPath string
}

// NewSSHHost creates a host for user@host destinations.
func NewSSHHost(user, host string) *SSHHost {
	return &SSHHost{
		Target:      user + "@" + host,
		User:        user,
		DB2UtilPath: "/QOpenSys/pkgs/bin/db2util",
	}
}

var _ Host = (*SSHHost)(nil)

func (h *SSHHost) CurrentUser() string { return h.User }

// RunCommand runs a PASE command on the remote host.
func (h *SSHHost) RunCommand(ctx context.Context, command string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, "ssh", "-o", "BatchMode=yes", h.Target, command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Code = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("ssh %s: %w", h.Target, err)
	}
	return res, nil
}

// Query runs SQL through db2util and decodes its JSON row output.
func (h *SSHHost) Query(ctx context.Context, sql string) ([]map[string]string, error) {
	quoted := strings.ReplaceAll(sql, `"`, `\"`)
	res, err := h.RunCommand(ctx, fmt.Sprintf(`%s -o json "%s"`, h.DB2UtilPath, quoted))
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, fmt.Errorf("sql query failed: %s", strings.TrimSpace(res.Stderr))
	}

	var payload struct {
		Records []map[string]interface{} `json:"records"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &payload); err != nil {
		return nil, fmt.Errorf("decode query output: %w", err)
	}

	rows := make([]map[string]string, 0, len(payload.Records))
	for _, rec := range payload.Records {
		row := make(map[string]string, len(rec))
		for k, v := range rec {
			row[strings.ToUpper(k)] = fmt.Sprintf("%v", v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Stat checks a remote path through the POSIX stat utility.
func (h *SSHHost) Stat(ctx context.Context, remotePath string) (int64, int64, bool, error) {
	res, err := h.RunCommand(ctx, fmt.Sprintf("stat -c '%%s %%Y' %q", remotePath))
	if err != nil {
		return 0, 0, false, err
	}
	if res.Code != 0 {
		// stat failing with a nonzero code means the path is absent.
		return 0, 0, false, nil
	}

	fields := strings.Fields(strings.TrimSpace(res.Stdout))
	if len(fields) != 2 {
		return 0, 0, false, fmt.Errorf("unexpected stat output %q", res.Stdout)
	}
	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse stat size: %w", err)
	}
	modified, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse stat mtime: %w", err)
	}
	return size, modified, true, nil
}

// Download copies a remote file with scp.
func (h *SSHHost) Download(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o700); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	cmd := exec.CommandContext(ctx, "scp", "-o", "BatchMode=yes", h.Target+":"+remotePath, localPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("scp %s: %w: %s", remotePath, err, strings.TrimSpace(string(out)))
	}
	return nil
}
