package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	bridgeerrors "github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/launch"
	"github.com/calock/ibmidbg/pkg/types"
)

func (s *Server) handleLaunchBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	library, err := request.RequireString("library")
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.MissingParameter("library",
			"Name the library containing the program, e.g. MYLIB.").Error()), nil
	}
	object, err := request.RequireString("object")
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.MissingParameter("object",
			"Name the program or service program to debug, e.g. MYPROG.").Error()), nil
	}

	password, _ := request.RequireString("password")
	command, cmdErr := request.RequireString("command")
	curlib, _ := request.RequireString("currentLibrary")
	libl, _ := request.RequireString("libraryList")
	s.inputs.stage(password, command, cmdErr == nil && command != "", curlib, libl)

	req := launch.BatchRequest{Library: library, Object: object}
	if libl != "" {
		req.LibraryList = strings.Fields(libl)
	}
	if curlib != "" {
		req.CurrentLibrary = curlib
	}

	attempt, err := s.manager.Launch(ctx, req)
	return s.launchResult(attempt, err)
}

func (s *Server) handleLaunchSEP(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	library, err := request.RequireString("library")
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.MissingParameter("library",
			"Name the library containing the target object.").Error()), nil
	}
	object, err := request.RequireString("object")
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.MissingParameter("object",
			"Name the program or service program to intercept.").Error()), nil
	}

	password, _ := request.RequireString("password")
	module, _ := request.RequireString("module")
	procedure, _ := request.RequireString("procedure")
	s.inputs.stage(password, "", false, "", "")

	attempt, err := s.manager.Launch(ctx, launch.SEPRequest{
		Library:   library,
		Object:    object,
		Module:    module,
		Procedure: procedure,
	})
	return s.launchResult(attempt, err)
}

// launchResult folds an attempt, its error, and any collected notices
// into one tool result.
func (s *Server) launchResult(attempt types.AttemptInfo, err error) (*mcp.CallToolResult, error) {
	notices := s.notify.drain()

	if err != nil {
		if bridgeerrors.IsUserCancelled(err) {
			return mcp.NewToolResultError(bridgeerrors.MissingParameter("password",
				"No cached password was available; pass the password argument.").Error()), nil
		}
		return mcp.NewToolResultError(bridgeerrors.FromError(err).Error()), nil
	}

	payload := map[string]interface{}{
		"attempt": attempt,
	}
	if len(notices) > 0 {
		payload["notices"] = notices
	}
	return jsonResult(payload)
}

func (s *Server) handleServiceStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	compat, err := s.gate.Check(ctx)
	s.notify.drain()
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.FromError(err).Error()), nil
	}
	return jsonResult(compat)
}

func (s *Server) handleServiceSetup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	security, err := s.certs.Setup(ctx, s.conn)
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.FromError(err).Error()), nil
	}
	return jsonResult(security)
}

func (s *Server) handleCleanupJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stuck, err := s.manager.StuckJobs(ctx)
	if err != nil {
		return mcp.NewToolResultError(bridgeerrors.FromError(err).Error()), nil
	}

	payload := map[string]interface{}{
		"jobs": stuck,
	}

	if request.GetBool("end", false) {
		ended := make([]string, 0, len(stuck))
		failed := make(map[string]string)
		for _, job := range stuck {
			if err := s.manager.EndJob(ctx, job.Identifier); err != nil {
				failed[job.Identifier] = err.Error()
				continue
			}
			ended = append(ended, job.Identifier)
		}
		payload["ended"] = ended
		if len(failed) > 0 {
			payload["failed"] = failed
		}
	}

	return jsonResult(payload)
}

func (s *Server) handleListAttempts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"attempts": s.manager.Attempts(),
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
