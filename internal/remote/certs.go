package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/calock/ibmidbg/internal/errors"
)

// CertificateOps covers discovery, generation and transfer of the debug
// service client certificate. Key and certificate cryptography happen
// entirely on the remote side; this adapter only triggers the tooling
// and moves the resulting file.
type CertificateOps struct {
	Host Host

	// RemoteCertPath is where the service publishes its client
	// certificate after generation.
	RemoteCertPath string

	// ServicePath is the service's product directory containing the
	// certificate generation tooling.
	ServicePath string
}

// Exists reports whether the remote certificate has been generated, and
// its remote stamp for staleness checks.
func (c *CertificateOps) Exists(ctx context.Context) (size int64, modified int64, exists bool, err error) {
	size, modified, exists, err = c.Host.Stat(ctx, c.RemoteCertPath)
	if err != nil {
		return 0, 0, false, errors.RemoteFailure("certificate existence check", err)
	}
	return size, modified, exists, nil
}

// Generate triggers remote certificate generation through the service's
// own tooling. Absence of the tooling is a certificate issue the caller
// surfaces with a remediation hint.
func (c *CertificateOps) Generate(ctx context.Context) error {
	script := c.ServicePath + "/bin/debug_service_cert.sh"

	if _, _, exists, err := c.Host.Stat(ctx, script); err != nil {
		return errors.RemoteFailure("certificate tooling check", err)
	} else if !exists {
		return errors.CertificateIssue("generation", fmt.Errorf("%s not found on the remote system", script))
	}

	res, err := c.Host.RunCommand(ctx, script)
	if err != nil {
		return errors.CertificateIssue("generation", err)
	}
	if res.Code != 0 {
		return errors.CertificateIssue("generation", fmt.Errorf("exit code %d: %s", res.Code, strings.TrimSpace(res.Stderr)))
	}
	return nil
}

// Download copies the remote certificate to localPath.
func (c *CertificateOps) Download(ctx context.Context, localPath string) error {
	if err := c.Host.Download(ctx, c.RemoteCertPath, localPath); err != nil {
		return errors.CertificateIssue("download", err)
	}
	return nil
}
