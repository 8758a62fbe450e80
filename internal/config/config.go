// Package config provides configuration management for the debug bridge.
//
// Configuration controls:
//   - Debug service ports (general channel and service entry point channel)
//   - Certificate handling: remote certificate path, local state directory,
//     and the environment variable names that communicate the certificate
//     path and deployment mode to the launch delegate
//   - Job submission defaults: job queue and message queue
//   - Launch flags: production file updates and service trace
//
// Configuration can be loaded from a JSON file or use sensible defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/calock/ibmidbg/pkg/types"
)

const (
	// DefaultCertificateEnv is the well-known variable that carries the
	// local client certificate path to the launch delegate.
	DefaultCertificateEnv = "DEBUG_CA_PATH"

	// DefaultManagedEnv distinguishes externally-managed deployments.
	// When set (non-empty), certificate generation and download are
	// disabled and the trust posture is owned by the outer agent.
	DefaultManagedEnv = "DEBUG_MANAGED"
)

// Config holds the bridge configuration
type Config struct {
	// Debug service channel ports
	ServicePort int `json:"servicePort"`
	SEPPort     int `json:"sepPort"`

	// Certificate handling
	CertificateEnv    string `json:"certificateEnv"`
	ManagedEnv        string `json:"managedEnv"`
	RemoteCertPath    string `json:"remoteCertPath"`
	RemoteServicePath string `json:"remoteServicePath"`
	StateDir          string `json:"stateDir"`

	// Batch job submission defaults
	JobQueue     string `json:"jobQueue"`
	MessageQueue string `json:"messageQueue"`

	// Launch flags propagated into every descriptor
	UpdateProductionFiles bool `json:"updateProductionFiles"`
	Trace                 bool `json:"trace"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	stateDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".ibmidbg")
	}

	return &Config{
		ServicePort:       8005,
		SEPPort:           8008,
		CertificateEnv:    DefaultCertificateEnv,
		ManagedEnv:        DefaultManagedEnv,
		RemoteCertPath:    "/QIBM/UserData/IBMiDebugService/certs/debug_service.crt",
		RemoteServicePath: "/QIBM/ProdData/IBMiDebugService",
		StateDir:          stateDir,
		JobQueue:          "QSYSNOMAX",
		MessageQueue:      "*USRPRF",
	}
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DeploymentMode reads the deployment-mode discriminator from the
// environment. Externally-managed mode disables local certificate
// generation and download.
func (c *Config) DeploymentMode() types.DeploymentMode {
	if os.Getenv(c.ManagedEnv) != "" {
		return types.DeploymentExternallyManaged
	}
	return types.DeploymentSelfManaged
}

// LocalCertPath returns the deterministic local path for the downloaded
// client certificate of the named connection.
func (c *Config) LocalCertPath(connectionName string) string {
	return filepath.Join(c.StateDir, "certs", connectionName+".crt")
}
