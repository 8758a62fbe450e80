package launch

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/gate"
	"github.com/calock/ibmidbg/pkg/types"
)

// WildcardAll is the token matching every module or procedure in a
// service entry point descriptor.
const WildcardAll = "*ALL"

// CommandStore remembers the last user-edited start command per object.
type CommandStore interface {
	Command(key string) (string, bool)
	SetCommand(key, command string) error
}

// CommandEditor offers the start command for user edit before a batch
// launch. ok=false means the edit was cancelled; the launch aborts
// silently and nothing is persisted.
type CommandEditor interface {
	EditCommand(ctx context.Context, initial string) (edited string, ok bool, err error)
}

// WorkspaceEnv looks up workspace-level environment overrides such as
// CURLIB and LIBL.
type WorkspaceEnv interface {
	LookupEnv(name string) (string, bool)
}

// Builder assembles DebugLaunchConfig values for both launch modes.
type Builder struct {
	Conn      types.Connection
	Store     CommandStore
	Editor    CommandEditor
	Workspace WorkspaceEnv

	ServicePort    int
	SEPPort        int
	JobQueue       string
	MessageQueue   string
	CertificateEnv string

	UpdateProductionFiles bool
	Trace                 bool

	Logger zerolog.Logger
}

// Build resolves one launch request into the descriptor handed to the
// launch delegate. password and kind must already be resolved; compat
// gates SEP requests; security carries the channel flags from the
// certificate step.
func (b *Builder) Build(ctx context.Context, req Request, password string, kind types.ObjectKind, compat types.Compatibility, security types.Security) (types.DebugLaunchConfig, error) {
	library, object := req.Target()

	cfg := types.DebugLaunchConfig{
		Type:    "ibmidebug",
		Request: "launch",
		Name:    fmt.Sprintf("Debug %s/%s", library, object),
		Mode:    req.Mode(),

		Host:     b.Conn.Host,
		User:     b.Conn.User,
		Password: password,

		Port:    b.ServicePort,
		SEPPort: b.SEPPort,

		Secure:         security.Secure,
		SkipCertVerify: security.SkipCertVerify,
		CertificateEnv: b.CertificateEnv,

		Library:    library,
		Object:     object,
		ObjectKind: kind,

		UpdateProductionFiles: b.UpdateProductionFiles,
		Trace:                 b.Trace,
	}

	switch r := req.(type) {
	case BatchRequest:
		submit, err := b.buildSubmitCommand(ctx, r, library, object)
		if err != nil {
			return types.DebugLaunchConfig{}, err
		}
		cfg.SubmitCommand = submit

	case SEPRequest:
		if err := gate.RequireSEP(compat); err != nil {
			return types.DebugLaunchConfig{}, err
		}
		cfg.SEPTarget = sepTarget(library, object, kind, r.Module, r.Procedure)

	default:
		return types.DebugLaunchConfig{}, errors.InvalidParameter("request", req, "BatchRequest or SEPRequest")
	}

	b.Logger.Debug().
		Str("library", library).
		Str("object", object).
		Str("mode", string(req.Mode())).
		Msg("launch configuration assembled")

	return cfg, nil
}

// buildSubmitCommand produces the SBMJOB wrapper around the remembered,
// user-edited start command.
func (b *Builder) buildSubmitCommand(ctx context.Context, req BatchRequest, library, object string) (string, error) {
	key := library + "/" + object

	command, ok := b.Store.Command(key)
	if !ok || command == "" {
		command = fmt.Sprintf("CALL PGM(%s/%s)", library, object)
	}

	edited, ok, err := b.Editor.EditCommand(ctx, command)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.UserCancelled("start command edit")
	}
	command = strings.TrimSpace(edited)

	if err := b.Store.SetCommand(key, command); err != nil {
		// A failed remember only costs the default next time.
		b.Logger.Warn().Err(err).Str("key", key).Msg("could not persist start command")
	}

	libraries, current := b.resolveLibraries(req, library)

	return fmt.Sprintf(
		"SBMJOB CMD(%s) INLLIBL(%s) CURLIB(%s) JOBQ(%s) MSGQ(%s) CPYENVVAR(*YES)",
		command,
		strings.Join(libraries, " "),
		current,
		b.JobQueue,
		b.MessageQueue,
	), nil
}

// resolveLibraries picks the library list and current library for the
// submitted job. Workspace CURLIB/LIBL overrides beat the request's
// override, which beats the connection defaults.
func (b *Builder) resolveLibraries(req BatchRequest, library string) ([]string, string) {
	libraries := b.Conn.DefaultLibraries
	if len(req.LibraryList) > 0 {
		libraries = req.LibraryList
	}
	if b.Workspace != nil {
		if libl, ok := b.Workspace.LookupEnv("LIBL"); ok && strings.TrimSpace(libl) != "" {
			libraries = strings.Fields(libl)
		}
	}

	normalized := make([]string, 0, len(libraries))
	for _, lib := range libraries {
		normalized = append(normalized, NormalizeLibrary(lib))
	}
	if len(normalized) == 0 {
		normalized = []string{library}
	}

	current := NormalizeLibrary(req.CurrentLibrary)
	if current == "" {
		current = NormalizeLibrary(b.Conn.CurrentLibrary)
	}
	if b.Workspace != nil {
		if curlib, ok := b.Workspace.LookupEnv("CURLIB"); ok && strings.TrimSpace(curlib) != "" {
			current = NormalizeLibrary(curlib)
		}
	}
	if current == "" {
		current = normalized[0]
	}

	return normalized, current
}

// sepTarget formats the LIBRARY/OBJECT TYPE/MODULE/PROCEDURE descriptor.
func sepTarget(library, object string, kind types.ObjectKind, module, procedure string) string {
	if module = strings.ToUpper(strings.TrimSpace(module)); module == "" {
		module = WildcardAll
	}
	if procedure = strings.TrimSpace(procedure); procedure == "" {
		procedure = WildcardAll
	}
	return fmt.Sprintf("%s/%s %s/%s/%s", library, object, kind, module, procedure)
}
