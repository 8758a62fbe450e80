package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calock/ibmidbg/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8005, cfg.ServicePort)
	assert.Equal(t, 8008, cfg.SEPPort)
	assert.Equal(t, "DEBUG_CA_PATH", cfg.CertificateEnv)
	assert.Equal(t, "DEBUG_MANAGED", cfg.ManagedEnv)
	assert.Equal(t, "/QIBM/UserData/IBMiDebugService/certs/debug_service.crt", cfg.RemoteCertPath)
	assert.Equal(t, "/QIBM/ProdData/IBMiDebugService", cfg.RemoteServicePath)
	assert.Equal(t, "QSYSNOMAX", cfg.JobQueue)
	assert.Equal(t, "*USRPRF", cfg.MessageQueue)
	assert.False(t, cfg.UpdateProductionFiles)
	assert.False(t, cfg.Trace)
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ServicePort, cfg.ServicePort)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"servicePort": 9005,
		"jobQueue": "MYQUEUE",
		"trace": true
	}`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9005, cfg.ServicePort)
	assert.Equal(t, "MYQUEUE", cfg.JobQueue)
	assert.True(t, cfg.Trace)
	// Untouched fields keep their defaults.
	assert.Equal(t, 8008, cfg.SEPPort)
	assert.Equal(t, "*USRPRF", cfg.MessageQueue)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDeploymentMode(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("DEBUG_MANAGED", "")
	assert.Equal(t, types.DeploymentSelfManaged, cfg.DeploymentMode())

	t.Setenv("DEBUG_MANAGED", "1")
	assert.Equal(t, types.DeploymentExternallyManaged, cfg.DeploymentMode())
}

func TestLocalCertPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = "/home/dev/.ibmidbg"

	assert.Equal(t, "/home/dev/.ibmidbg/certs/dev400.crt", cfg.LocalCertPath("dev400"))
}
