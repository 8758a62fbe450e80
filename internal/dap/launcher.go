package dap

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/calock/ibmidbg/pkg/types"
)

// Launcher hands a resolved launch descriptor to the debug service over
// DAP. It satisfies the session manager's launch delegate port.
type Launcher struct {
	Logger zerolog.Logger
}

// Launch dials the service, performs the handshake, and sends the
// launch request. The boolean result is the service's accept/reject of
// the session, distinct from transport errors.
func (l *Launcher) Launch(ctx context.Context, cfg types.DebugLaunchConfig) (bool, error) {
	address := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var transport *Transport
	var err error
	if cfg.Secure {
		transport, err = NewTLSTransport(address, certificatePath(cfg), cfg.SkipCertVerify)
	} else {
		transport, err = NewTCPTransport(address)
	}
	if err != nil {
		return false, err
	}

	client := NewClient(transport)
	defer client.Close()

	if _, err := client.Initialize("ibmidbg", "IBM i Debug Bridge"); err != nil {
		return false, err
	}

	resp, err := client.Launch(launchArguments(cfg))
	if err != nil {
		return false, err
	}

	l.Logger.Info().
		Str("library", cfg.Library).
		Str("object", cfg.Object).
		Str("mode", string(cfg.Mode)).
		Msg("debug session launched")

	return resp.Success, nil
}

// launchArguments flattens the descriptor into the adapter-specific
// argument map the service expects.
func launchArguments(cfg types.DebugLaunchConfig) map[string]interface{} {
	args := map[string]interface{}{
		"type":                    cfg.Type,
		"request":                 cfg.Request,
		"name":                    cfg.Name,
		"subType":                 string(cfg.Mode),
		"user":                    cfg.User,
		"password":                cfg.Password,
		"host":                    cfg.Host,
		"port":                    cfg.Port,
		"secure":                  cfg.Secure,
		"ignoreCertificateErrors": cfg.SkipCertVerify,
		"library":                 cfg.Library,
		"program":                 cfg.Object,
		"updateProductionFiles":   cfg.UpdateProductionFiles,
		"trace":                   cfg.Trace,
	}

	switch cfg.Mode {
	case types.DebugModeBatch:
		args["sbmjobCommand"] = cfg.SubmitCommand
	case types.DebugModeSEP:
		args["serviceEntryPoint"] = cfg.SEPTarget
		args["sepPort"] = cfg.SEPPort
	}

	return args
}

// certificatePath resolves the certificate the transport should trust
// from the well-known environment reference.
func certificatePath(cfg types.DebugLaunchConfig) string {
	if cfg.SkipCertVerify || cfg.CertificateEnv == "" {
		return ""
	}
	return os.Getenv(cfg.CertificateEnv)
}
