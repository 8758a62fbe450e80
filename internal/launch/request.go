// Package launch assembles the two supported launch variants into a
// protocol-agnostic launch descriptor.
package launch

import (
	"strings"

	"github.com/calock/ibmidbg/pkg/types"
)

// Request is one of exactly two launch variants. Each variant carries
// only the fields its mode needs; the compiler enforces the split
// instead of optional-field convention.
type Request interface {
	Mode() types.DebugMode
	Target() (library, object string)
}

// BatchRequest starts a debug session by submitting a batch job that
// runs a user-editable start command.
type BatchRequest struct {
	Library string
	Object  string

	// LibraryList overrides the connection's default library list
	// when non-nil.
	LibraryList []string

	// CurrentLibrary overrides the current library when set.
	CurrentLibrary string
}

func (r BatchRequest) Mode() types.DebugMode { return types.DebugModeBatch }

func (r BatchRequest) Target() (string, string) {
	return NormalizeLibrary(r.Library), NormalizeObject(r.Object)
}

// SEPRequest registers a service entry point that intercepts the next
// execution of the target, optionally narrowed to a module/procedure.
type SEPRequest struct {
	Library string
	Object  string

	// Module and Procedure narrow the entry point; empty means the
	// wildcard-all token.
	Module    string
	Procedure string
}

func (r SEPRequest) Mode() types.DebugMode { return types.DebugModeSEP }

func (r SEPRequest) Target() (string, string) {
	return NormalizeLibrary(r.Library), NormalizeObject(r.Object)
}

// NormalizeLibrary upper-cases and trims a library name. Idempotent.
func NormalizeLibrary(library string) string {
	return strings.ToUpper(strings.TrimSpace(library))
}

// NormalizeObject upper-cases a program object name and strips a
// trailing program-file suffix. Idempotent: normalizing twice yields
// the same result as once.
func NormalizeObject(object string) string {
	object = strings.ToUpper(strings.TrimSpace(object))
	object = strings.TrimSuffix(object, ".PGM")
	return object
}
