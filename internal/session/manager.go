// Package session drives a debug launch attempt end-to-end: pre-flight
// compatibility and certificate checks, credential acquisition, config
// assembly, delegate launch, and post-termination cleanup of orphaned
// remote jobs.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/internal/certs"
	"github.com/calock/ibmidbg/internal/creds"
	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/gate"
	"github.com/calock/ibmidbg/internal/launch"
	"github.com/calock/ibmidbg/internal/objects"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/pkg/types"
)

// Launcher is the external debug-session runtime consuming the
// assembled descriptor. The boolean result is the runtime's
// accept/reject of the session.
type Launcher interface {
	Launch(ctx context.Context, cfg types.DebugLaunchConfig) (bool, error)
}

// Notifier surfaces user-visible notices and one-click actions. The
// surrounding application owns the actual UI.
type Notifier interface {
	Info(message string)
	Warn(message string)
	Error(message string)

	// OfferAction presents a message with a single action button and
	// reports whether the user took it.
	OfferAction(message, action string) bool
}

// Manager coordinates launch attempts for one connection. Its caches
// (credentials, object types, compatibility) live exactly as long as
// the connection; Disconnect drops them all.
type Manager struct {
	conn     types.Connection
	gate     *gate.Gate
	certs    certs.Provisioner
	creds    *creds.Cache
	resolver *objects.Resolver
	builder  *launch.Builder
	launcher Launcher
	jobs     *remote.Jobs
	notify   Notifier
	logger   zerolog.Logger

	mu       sync.Mutex
	attempts []types.AttemptInfo
}

// NewManager wires a manager for one connection.
func NewManager(
	conn types.Connection,
	g *gate.Gate,
	provisioner certs.Provisioner,
	credentials *creds.Cache,
	resolver *objects.Resolver,
	builder *launch.Builder,
	launcher Launcher,
	jobs *remote.Jobs,
	notify Notifier,
	logger zerolog.Logger,
) *Manager {
	return &Manager{
		conn:     conn,
		gate:     g,
		certs:    provisioner,
		creds:    credentials,
		resolver: resolver,
		builder:  builder,
		launcher: launcher,
		jobs:     jobs,
		notify:   notify,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Launch runs one attempt through the state machine
// IDLE → PRECHECK → CREDENTIAL → BUILD → LAUNCHED → {CONFIRMED|ABANDONED}.
//
// UserCancelled aborts are silent; every other failure reaches the user
// exactly once through the notifier, and the returned error carries the
// structured cause for programmatic callers.
func (m *Manager) Launch(ctx context.Context, req launch.Request) (types.AttemptInfo, error) {
	library, object := req.Target()
	attempt := types.AttemptInfo{
		AttemptID: uuid.New().String(),
		Library:   library,
		Object:    object,
		Mode:      req.Mode(),
		State:     types.AttemptStateIdle,
	}
	log := m.logger.With().Str("attempt", attempt.AttemptID).Str("target", library+"/"+object).Logger()

	m.record(&attempt, types.AttemptStatePrecheck)
	security, err := m.precheck(ctx, req, log)
	if err != nil {
		return m.abandon(&attempt, err, log)
	}

	m.record(&attempt, types.AttemptStateCredential)
	password, err := m.creds.ObtainPassword(ctx, m.conn.Identity())
	if err != nil {
		return m.abandon(&attempt, err, log)
	}
	if password == "" {
		// Dismissed prompt: user-initiated cancel, no error banner.
		return m.abandon(&attempt, errors.UserCancelled("password prompt"), log)
	}

	m.record(&attempt, types.AttemptStateBuild)
	kind, err := m.resolver.ResolveType(ctx, library, object)
	if err != nil {
		return m.abandon(&attempt, err, log)
	}

	compat, err := m.gate.Check(ctx)
	if err != nil {
		return m.abandon(&attempt, err, log)
	}

	cfg, err := m.builder.Build(ctx, req, password, kind, compat, security)
	if err != nil {
		return m.abandon(&attempt, err, log)
	}

	m.record(&attempt, types.AttemptStateLaunched)
	ok, err := m.launcher.Launch(ctx, cfg)
	if err != nil || !ok {
		m.creds.InvalidateUnlessConfirmed(m.conn.Identity())
		if err == nil {
			err = fmt.Errorf("the debug service rejected the session")
		}
		return m.abandon(&attempt, errors.LaunchFailed(library, object, err), log)
	}

	m.creds.MarkConfirmed()
	m.record(&attempt, types.AttemptStateConfirmed)
	log.Info().Msg("debug session confirmed")
	return attempt, nil
}

// precheck gates the attempt on service compatibility and resolves the
// channel security. The certificate step only does remote work for
// self-managed deployments; the externally-managed strategy just reads
// the environment reference.
func (m *Manager) precheck(ctx context.Context, req launch.Request, log zerolog.Logger) (types.Security, error) {
	compat, err := m.gate.Check(ctx)
	if err != nil {
		return types.Security{}, err
	}
	if !compat.Installed {
		return types.Security{}, errors.ServiceNotInstalled()
	}
	if !compat.MeetsMinimum {
		return types.Security{}, errors.VersionBelowMinimum(compat.Version, gate.MinimumVersion)
	}
	if req.Mode() == types.DebugModeSEP {
		if err := gate.RequireSEP(compat); err != nil {
			return types.Security{}, err
		}
	}

	security, err := m.certs.Resolve(ctx, m.conn)
	if err != nil {
		return types.Security{}, err
	}

	log.Debug().Bool("secure", security.Secure).Msg("pre-flight checks passed")
	return security, nil
}

// abandon finalizes a failed attempt, surfacing the error according to
// its kind. UserCancelled stays silent.
func (m *Manager) abandon(attempt *types.AttemptInfo, err error, log zerolog.Logger) (types.AttemptInfo, error) {
	m.record(attempt, types.AttemptStateAbandoned)

	switch errors.KindOf(err) {
	case errors.KindUserCancelled:
		log.Debug().Msg("attempt cancelled by user")
	case errors.KindCapabilityMissing:
		// The one-time below-minimum warning and the not-installed
		// notice are emitted by the gate; SEP capability errors are
		// per-attempt.
		if errors.FromError(err).Code == errors.CodeSEPUnsupported {
			m.notify.Error(err.Error())
		}
		log.Warn().Err(err).Msg("attempt aborted: capability missing")
	default:
		m.notify.Error(err.Error())
		log.Warn().Err(err).Msg("attempt abandoned")
	}

	return *attempt, err
}

// Attempts lists every attempt made through this manager.
func (m *Manager) Attempts() []types.AttemptInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.AttemptInfo, len(m.attempts))
	copy(out, m.attempts)
	return out
}

// Disconnect drops every connection-scoped cache. A new connection
// implies new caches.
func (m *Manager) Disconnect() {
	m.gate.Invalidate()
	m.resolver.Invalidate()
}

func (m *Manager) record(attempt *types.AttemptInfo, state types.AttemptState) {
	attempt.State = state

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.attempts {
		if m.attempts[i].AttemptID == attempt.AttemptID {
			m.attempts[i] = *attempt
			return
		}
	}
	m.attempts = append(m.attempts, *attempt)
}
