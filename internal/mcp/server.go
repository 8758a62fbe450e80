// Package mcp exposes the debug bridge through Model Context Protocol
// tools, so an AI assistant or editor front end can drive it:
//
//   - debug_launch_batch: submit a batch job under debug
//   - debug_launch_sep: register a service entry point
//   - debug_service_status: report debug service compatibility
//   - debug_service_setup: generate and fetch the service certificate
//   - debug_cleanup_jobs: list or end message-wait jobs
//   - debug_list_attempts: list launch attempts made this session
//
// Interactive capabilities (password prompt, start command edit) are
// satisfied from tool arguments rather than a terminal.
package mcp

import (
	"context"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/internal/certs"
	"github.com/calock/ibmidbg/internal/config"
	"github.com/calock/ibmidbg/internal/creds"
	"github.com/calock/ibmidbg/internal/dap"
	"github.com/calock/ibmidbg/internal/gate"
	"github.com/calock/ibmidbg/internal/launch"
	"github.com/calock/ibmidbg/internal/objects"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/internal/session"
	"github.com/calock/ibmidbg/internal/store"
	"github.com/calock/ibmidbg/internal/version"
	"github.com/calock/ibmidbg/pkg/types"
)

// Server wraps the MCP server around one connection's session manager.
type Server struct {
	mcpServer *server.MCPServer
	manager   *session.Manager
	gate      *gate.Gate
	certs     certs.Provisioner
	config    *config.Config
	conn      types.Connection

	inputs *toolInputs
	notify *recordingNotifier
	logger zerolog.Logger
}

// NewServer wires the full component graph for one connection.
func NewServer(cfg *config.Config, conn types.Connection, host remote.Host, logger zerolog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		"ibmidbg",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	kv := store.New(filepath.Join(cfg.StateDir, "state.json"))
	inputs := &toolInputs{}
	notify := &recordingNotifier{logger: logger}

	g := gate.New(
		&remote.ServiceProbe{Host: host, InstallPath: cfg.RemoteServicePath},
		kv, notify, logger,
	)

	provisioner := certs.Select(
		cfg.DeploymentMode(),
		&remote.CertificateOps{
			Host:           host,
			RemoteCertPath: cfg.RemoteCertPath,
			ServicePath:    cfg.RemoteServicePath,
		},
		cfg.LocalCertPath(conn.Name),
		cfg.CertificateEnv,
		logger,
	)

	var secretStore creds.SecretStore
	if cfg.StateDir != "" {
		secretStore = creds.NewFileSecretStore(filepath.Join(cfg.StateDir, "secrets"))
	}

	builder := &launch.Builder{
		Conn:                  conn,
		Store:                 kv,
		Editor:                inputs,
		Workspace:             inputs,
		ServicePort:           cfg.ServicePort,
		SEPPort:               cfg.SEPPort,
		JobQueue:              cfg.JobQueue,
		MessageQueue:          cfg.MessageQueue,
		CertificateEnv:        cfg.CertificateEnv,
		UpdateProductionFiles: cfg.UpdateProductionFiles,
		Trace:                 cfg.Trace,
		Logger:                logger,
	}

	manager := session.NewManager(
		conn,
		g,
		provisioner,
		creds.NewCache(secretStore, inputs),
		objects.NewResolver(&remote.ObjectStatistics{Query: host}),
		builder,
		&dap.Launcher{Logger: logger},
		&remote.Jobs{Host: host},
		notify,
		logger,
	)

	s := &Server{
		mcpServer: mcpServer,
		manager:   manager,
		gate:      g,
		certs:     provisioner,
		config:    cfg,
		conn:      conn,
		inputs:    inputs,
		notify:    notify,
		logger:    logger.With().Str("component", "mcp").Logger(),
	}

	s.registerTools()

	return s
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Close runs the end-of-session cleanup flow, then drops
// connection-scoped state. Leftover message-wait jobs are surfaced
// through the notifier; ending them stays a user decision via the
// cleanup tool.
func (s *Server) Close() {
	s.manager.HandleTermination(context.Background())
	s.manager.Disconnect()
}
