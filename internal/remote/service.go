package remote

import (
	"context"
	"strings"

	"github.com/calock/ibmidbg/internal/errors"
)

// ServiceDetails reports whether the debug service is installed and at
// which version. Fetched lazily and cached by the compatibility gate;
// invalidated on disconnect.
type ServiceDetails struct {
	Installed bool
	Version   string
}

// ServiceProbe discovers the installed debug service.
type ServiceProbe struct {
	Host Host

	// InstallPath is the service's product directory, e.g.
	// /QIBM/ProdData/IBMiDebugService.
	InstallPath string
}

// Probe checks for the service install directory and reads its version
// marker. An absent directory means not installed, which is a normal
// result rather than an error.
func (p *ServiceProbe) Probe(ctx context.Context) (ServiceDetails, error) {
	if _, _, exists, err := p.Host.Stat(ctx, p.InstallPath); err != nil {
		return ServiceDetails{}, errors.RemoteFailure("service install check", err)
	} else if !exists {
		return ServiceDetails{Installed: false}, nil
	}

	res, err := p.Host.RunCommand(ctx, "cat "+p.InstallPath+"/version.txt")
	if err != nil {
		return ServiceDetails{}, errors.RemoteFailure("service version read", err)
	}
	if res.Code != 0 {
		// Installed but no version marker: very old service builds
		// predate the marker file.
		return ServiceDetails{Installed: true, Version: "0.0.0"}, nil
	}

	version := strings.TrimSpace(res.Stdout)
	version = strings.TrimPrefix(version, "v")
	if version == "" {
		version = "0.0.0"
	}
	return ServiceDetails{Installed: true, Version: version}, nil
}
