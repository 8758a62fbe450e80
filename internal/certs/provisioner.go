// Package certs resolves the channel security for a launch attempt and
// keeps the local copy of the debug service client certificate current.
//
// Two strategies exist, selected once per connection: SelfManaged owns
// generation, download and the local path; ExternallyManaged defers the
// whole trust posture to an outer agent and only reads the environment
// reference.
package certs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/pkg/types"
)

// Provisioner resolves channel security before a launch. Resolve is
// idempotent and never generates anything: a missing certificate is an
// error carrying the setup remediation hint. Setup is that remediation,
// invoked explicitly and never as an automatic retry.
type Provisioner interface {
	Resolve(ctx context.Context, conn types.Connection) (types.Security, error)
	Setup(ctx context.Context, conn types.Connection) (types.Security, error)
}

// Select returns the strategy for the connection's deployment mode.
func Select(mode types.DeploymentMode, ops *remote.CertificateOps, localPath, certEnv string, logger zerolog.Logger) Provisioner {
	if mode == types.DeploymentExternallyManaged {
		return &ExternallyManaged{CertEnv: certEnv}
	}
	return &SelfManaged{
		ops:       ops,
		localPath: localPath,
		certEnv:   certEnv,
		logger:    logger.With().Str("component", "certs").Logger(),
	}
}

// SelfManaged keeps the local copy of the client certificate current
// and enforces a secure channel. An absent remote certificate or a
// download failure surfaces as an error, not a silent downgrade.
type SelfManaged struct {
	ops       *remote.CertificateOps
	localPath string
	certEnv   string
	logger    zerolog.Logger
}

func (p *SelfManaged) Resolve(ctx context.Context, conn types.Connection) (types.Security, error) {
	size, modified, exists, err := p.ops.Exists(ctx)
	if err != nil {
		return types.Security{}, err
	}
	if !exists {
		// Generation is a user decision, never an automatic retry.
		return types.Security{}, errors.CertificateIssue("check",
			fmt.Errorf("the service certificate has not been generated"))
	}

	return p.materialize(ctx, size, modified)
}

// Setup is the one-time remediation for a missing certificate: it
// triggers remote generation, then downloads the result.
func (p *SelfManaged) Setup(ctx context.Context, conn types.Connection) (types.Security, error) {
	if err := p.ops.Generate(ctx); err != nil {
		return types.Security{}, err
	}
	size, modified, exists, err := p.ops.Exists(ctx)
	if err != nil {
		return types.Security{}, err
	}
	if !exists {
		return types.Security{}, errors.CertificateIssue("generation",
			fmt.Errorf("certificate still absent after generation"))
	}
	p.logger.Info().Msg("debug service certificate generated")

	return p.materialize(ctx, size, modified)
}

// materialize ensures the local copy matches the remote stamp and
// exports the environment reference.
func (p *SelfManaged) materialize(ctx context.Context, size, modified int64) (types.Security, error) {
	if p.stale(size, modified) {
		p.logger.Debug().Str("path", p.localPath).Msg("downloading debug service certificate")
		if err := os.MkdirAll(filepath.Dir(p.localPath), 0o700); err != nil {
			return types.Security{}, errors.CertificateIssue("download", err)
		}
		if err := p.ops.Download(ctx, p.localPath); err != nil {
			return types.Security{}, err
		}
		p.recordStamp(size, modified)
	}

	if err := os.Setenv(p.certEnv, p.localPath); err != nil {
		return types.Security{}, errors.CertificateIssue("environment", err)
	}

	return types.Security{
		Secure:          true,
		CertificatePath: p.localPath,
	}, nil
}

// stale reports whether the local copy is missing or no longer matches
// the remote stamp.
func (p *SelfManaged) stale(remoteSize, remoteModified int64) bool {
	if _, err := os.Stat(p.localPath); err != nil {
		return true
	}
	data, err := os.ReadFile(p.stampPath())
	if err != nil {
		return true
	}
	return string(data) != stamp(remoteSize, remoteModified)
}

func (p *SelfManaged) recordStamp(remoteSize, remoteModified int64) {
	// Stamp write failure only costs a redundant download next time.
	_ = os.WriteFile(p.stampPath(), []byte(stamp(remoteSize, remoteModified)), 0o600)
}

func (p *SelfManaged) stampPath() string {
	return p.localPath + ".stamp"
}

func stamp(size, modified int64) string {
	return fmt.Sprintf("%d:%d", size, modified)
}

// ExternallyManaged never generates or downloads anything; the secure
// flag reflects only whether the environment reference is already set,
// letting the managing agent decide the trust posture.
type ExternallyManaged struct {
	CertEnv string
}

func (p *ExternallyManaged) Resolve(ctx context.Context, conn types.Connection) (types.Security, error) {
	path := os.Getenv(p.CertEnv)
	if path == "" {
		return types.Security{
			Secure:         false,
			SkipCertVerify: true,
		}, nil
	}
	return types.Security{
		Secure:          true,
		CertificatePath: path,
	}, nil
}

func (p *ExternallyManaged) Setup(ctx context.Context, conn types.Connection) (types.Security, error) {
	return types.Security{}, errors.CertificateIssue("setup",
		fmt.Errorf("certificates are externally managed; set %s instead", p.CertEnv))
}
