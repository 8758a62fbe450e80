package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the six-tool debug API
func (s *Server) registerTools() {
	s.registerLaunchBatch()
	s.registerLaunchSEP()
	s.registerServiceStatus()
	s.registerServiceSetup()
	s.registerCleanupJobs()
	s.registerListAttempts()
}

func (s *Server) registerLaunchBatch() {
	tool := mcp.NewTool("debug_launch_batch",
		mcp.WithDescription("Start a batch debug session: submits a job running the start command under debug. Returns the attempt state and the submitted command."),
		mcp.WithString("library",
			mcp.Description("Library containing the target object, e.g. MYLIB."),
			mcp.Required(),
		),
		mcp.WithString("object",
			mcp.Description("Program or service program name, e.g. MYPROG. A trailing .PGM suffix is stripped."),
			mcp.Required(),
		),
		mcp.WithString("password",
			mcp.Description("Password for the connection user. Optional when a secret store entry or a cached password exists."),
		),
		mcp.WithString("command",
			mcp.Description("Start command to run under debug. Defaults to the remembered command for this object, or CALL PGM(LIBRARY/OBJECT)."),
		),
		mcp.WithString("libraryList",
			mcp.Description("Space-separated initial library list override."),
		),
		mcp.WithString("currentLibrary",
			mcp.Description("Current library override."),
		),
	)
	s.mcpServer.AddTool(tool, s.handleLaunchBatch)
}

func (s *Server) registerLaunchSEP() {
	tool := mcp.NewTool("debug_launch_sep",
		mcp.WithDescription("Register a service entry point: intercepts the next execution of the target without submitting a job. Requires debug service 2.0 or later."),
		mcp.WithString("library",
			mcp.Description("Library containing the target object."),
			mcp.Required(),
		),
		mcp.WithString("object",
			mcp.Description("Program or service program name."),
			mcp.Required(),
		),
		mcp.WithString("module",
			mcp.Description("Module filter. Defaults to *ALL."),
		),
		mcp.WithString("procedure",
			mcp.Description("Procedure filter. Defaults to *ALL."),
		),
		mcp.WithString("password",
			mcp.Description("Password for the connection user. Optional when a secret store entry or a cached password exists."),
		),
	)
	s.mcpServer.AddTool(tool, s.handleLaunchSEP)
}

func (s *Server) registerServiceStatus() {
	tool := mcp.NewTool("debug_service_status",
		mcp.WithDescription("Report whether the debug service is installed, its version, and which launch modes it supports."),
	)
	s.mcpServer.AddTool(tool, s.handleServiceStatus)
}

func (s *Server) registerServiceSetup() {
	tool := mcp.NewTool("debug_service_setup",
		mcp.WithDescription("Generate the debug service certificate on the remote system and download it. The remediation for a CERTIFICATE_ISSUE launch failure; only valid for self-managed deployments."),
	)
	s.mcpServer.AddTool(tool, s.handleServiceSetup)
}

func (s *Server) registerCleanupJobs() {
	tool := mcp.NewTool("debug_cleanup_jobs",
		mcp.WithDescription("List jobs owned by the connection user stuck in message-wait state, typically left behind by interrupted debug sessions. Set end=true to terminate them."),
		mcp.WithBoolean("end",
			mcp.Description("Terminate the listed jobs immediately (default: false, list only)."),
		),
	)
	s.mcpServer.AddTool(tool, s.handleCleanupJobs)
}

func (s *Server) registerListAttempts() {
	tool := mcp.NewTool("debug_list_attempts",
		mcp.WithDescription("List the launch attempts made through this server and their lifecycle states."),
	)
	s.mcpServer.AddTool(tool, s.handleListAttempts)
}
