// Package gate checks the installed debug service against the feature
// gates of this bridge: a minimum supported version and the service
// entry point threshold.
package gate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/pkg/types"
)

const (
	// MinimumVersion is the oldest debug service this bridge supports.
	// Policy constant, not configurable per call.
	MinimumVersion = "1.0.0"

	// sepMinimumMajor is the major version that introduced service
	// entry points, independent of the general minimum.
	sepMinimumMajor = 2
)

// MessageStore deduplicates one-time warnings across sessions.
type MessageStore interface {
	MessageShown(id string) bool
	MarkMessageShown(id string) error
}

// Notifier surfaces user-visible notices. Consumed as a capability; the
// surrounding application owns the actual UI.
type Notifier interface {
	Info(message string)
	Warn(message string)
}

// Gate queries and caches debug service compatibility per connection.
type Gate struct {
	probe    *remote.ServiceProbe
	messages MessageStore
	notify   Notifier
	logger   zerolog.Logger

	mu     sync.Mutex
	cached *types.Compatibility
}

// New creates a compatibility gate for one connection.
func New(probe *remote.ServiceProbe, messages MessageStore, notify Notifier, logger zerolog.Logger) *Gate {
	return &Gate{
		probe:    probe,
		messages: messages,
		notify:   notify,
		logger:   logger.With().Str("component", "gate").Logger(),
	}
}

// Check returns the compatibility of the installed debug service. The
// result is fetched lazily and cached for the connection's lifetime.
//
// A missing service is reported in the result, not as an error; callers
// abort with a single info notice. A version below minimum emits a
// one-time-per-version warning.
func (g *Gate) Check(ctx context.Context) (types.Compatibility, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != nil {
		return *g.cached, nil
	}

	details, err := g.probe.Probe(ctx)
	if err != nil {
		return types.Compatibility{}, err
	}

	compat := types.Compatibility{
		Installed: details.Installed,
		Version:   details.Version,
	}

	if !details.Installed {
		g.notify.Info("The debug service is not installed on this system.")
		g.cached = &compat
		return compat, nil
	}

	major, _, _ := parseVersion(details.Version)
	minMajor, _, _ := parseVersion(MinimumVersion)
	compat.MeetsMinimum = major >= minMajor
	compat.SupportsSEP = major >= sepMinimumMajor

	if !compat.MeetsMinimum {
		g.warnOnce(details.Version)
	}

	g.logger.Debug().
		Str("version", details.Version).
		Bool("meetsMinimum", compat.MeetsMinimum).
		Bool("supportsSEP", compat.SupportsSEP).
		Msg("debug service compatibility resolved")

	g.cached = &compat
	return compat, nil
}

// Invalidate drops the cached result. Called on disconnect.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cached = nil
}

// warnOnce emits the below-minimum warning once per installed version.
func (g *Gate) warnOnce(version string) {
	id := "debug-service-below-minimum:" + version
	if g.messages.MessageShown(id) {
		return
	}
	g.notify.Warn(fmt.Sprintf(
		"Debug service version %s is older than the supported minimum %s. Apply the latest PTF to update it.",
		version, MinimumVersion,
	))
	if err := g.messages.MarkMessageShown(id); err != nil {
		g.logger.Warn().Err(err).Msg("could not persist shown-message flag")
	}
}

// parseVersion extracts numeric components from a semver string,
// tolerating a leading 'v' and pre-release suffixes like "2.1.0-beta".
func parseVersion(v string) (major, minor, patch int) {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) >= 1 {
		fmt.Sscanf(parts[0], "%d", &major)
	}
	if len(parts) >= 2 {
		fmt.Sscanf(parts[1], "%d", &minor)
	}
	if len(parts) >= 3 {
		patchStr := strings.Split(parts[2], "-")[0]
		fmt.Sscanf(patchStr, "%d", &patch)
	}
	return
}

// RequireSEP returns a capability error when compat cannot host a
// service entry point request.
func RequireSEP(compat types.Compatibility) error {
	if !compat.Installed {
		return errors.ServiceNotInstalled()
	}
	if !compat.SupportsSEP {
		return errors.SEPUnsupported(compat.Version)
	}
	return nil
}
