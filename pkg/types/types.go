// Package types defines shared data types used across the debug bridge.
//
// This package provides type definitions for:
//   - Connection: coordinates and feature flags of the active IBM i target
//   - DeploymentMode: self-managed vs. externally-managed certificate posture
//   - ObjectKind: resolved object kinds (*PGM, *SRVPGM)
//   - Compatibility: installed debug service version and feature gates
//   - Security: resolved channel security for one launch attempt
//   - DebugLaunchConfig: the fully resolved descriptor handed to the launcher
//   - AttemptState / AttemptInfo: launch attempt lifecycle reporting
//   - StuckJob: a remote job left in message-wait state after a session
//
// These types are used throughout the codebase to maintain type safety
// and provide clear contracts between components.
package types

// DeploymentMode describes who owns the certificate and trust posture.
type DeploymentMode string

const (
	// DeploymentSelfManaged means this bridge generates, downloads and
	// references the debug service client certificate itself.
	DeploymentSelfManaged DeploymentMode = "self-managed"

	// DeploymentExternallyManaged means an orchestrating agent owns the
	// certificate; the bridge only reads the environment reference.
	DeploymentExternallyManaged DeploymentMode = "externally-managed"
)

// ObjectKind is the resolved kind of a debuggable object.
type ObjectKind string

const (
	ObjectKindProgram        ObjectKind = "*PGM"
	ObjectKindServiceProgram ObjectKind = "*SRVPGM"
)

// DebugMode selects how a debug session is started.
type DebugMode string

const (
	// DebugModeBatch submits a new batch job running the start command.
	DebugModeBatch DebugMode = "batch"

	// DebugModeSEP registers a service entry point that intercepts the
	// next execution of the target without submitting a job.
	DebugModeSEP DebugMode = "sep"
)

// Connection identifies the active remote target. It is owned by the
// surrounding application; the bridge reads it per operation and never
// mutates or persists it.
type Connection struct {
	Name string `json:"name"`
	Host string `json:"host"`
	User string `json:"user"`

	// DeploymentMode is discovered once at connect time.
	DeploymentMode DeploymentMode `json:"deploymentMode"`

	// DefaultLibraries is the connection's library list, first entry
	// doubling as the current library unless overridden per launch.
	DefaultLibraries []string `json:"defaultLibraries,omitempty"`

	// CurrentLibrary overrides the first library-list entry when set.
	CurrentLibrary string `json:"currentLibrary,omitempty"`
}

// Identity returns the credential cache key for this connection.
func (c Connection) Identity() string {
	return c.User + "@" + c.Host
}

// Compatibility reports what the installed debug service supports.
type Compatibility struct {
	Installed    bool   `json:"installed"`
	Version      string `json:"version,omitempty"`
	MeetsMinimum bool   `json:"meetsMinimum"`
	SupportsSEP  bool   `json:"supportsSEP"`
}

// Security is the resolved channel security for a launch attempt.
type Security struct {
	// Secure is false only when externally-managed policy permits it.
	Secure bool `json:"secure"`

	// SkipCertVerify tells the launcher to accept the service certificate
	// without chain validation (externally-managed insecure mode only).
	SkipCertVerify bool `json:"skipCertVerify"`

	// CertificatePath is the local client certificate path, empty when
	// the channel is insecure.
	CertificatePath string `json:"certificatePath,omitempty"`
}

// DebugLaunchConfig is the fully resolved descriptor handed to the
// launch delegate. It is never constructed without a resolved password
// and a resolved object type.
type DebugLaunchConfig struct {
	Type    string    `json:"type"`
	Request string    `json:"request"`
	Name    string    `json:"name"`
	Mode    DebugMode `json:"subType"`

	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"-"`

	Port    int `json:"port"`
	SEPPort int `json:"sepPort"`

	Secure         bool   `json:"secure"`
	SkipCertVerify bool   `json:"skipCertVerify"`
	CertificateEnv string `json:"certificateEnv,omitempty"`

	Library    string     `json:"library"`
	Object     string     `json:"object"`
	ObjectKind ObjectKind `json:"objectKind"`

	// SubmitCommand is set for batch mode only.
	SubmitCommand string `json:"submitCommand,omitempty"`

	// SEPTarget is the formatted LIBRARY/OBJECT TYPE/MODULE/PROCEDURE
	// descriptor, set for SEP mode only.
	SEPTarget string `json:"sepTarget,omitempty"`

	UpdateProductionFiles bool `json:"updateProductionFiles"`
	Trace                 bool `json:"trace"`
}

// AttemptState is the lifecycle state of one launch attempt.
type AttemptState string

const (
	AttemptStateIdle       AttemptState = "idle"
	AttemptStatePrecheck   AttemptState = "precheck"
	AttemptStateCredential AttemptState = "credential"
	AttemptStateBuild      AttemptState = "build"
	AttemptStateLaunched   AttemptState = "launched"
	AttemptStateConfirmed  AttemptState = "confirmed"
	AttemptStateAbandoned  AttemptState = "abandoned"
)

// AttemptInfo reports one launch attempt for listing surfaces.
type AttemptInfo struct {
	AttemptID string       `json:"attemptId"`
	Library   string       `json:"library"`
	Object    string       `json:"object"`
	Mode      DebugMode    `json:"mode"`
	State     AttemptState `json:"state"`
}

// StuckJob identifies a remote job left blocked in message-wait state,
// typically behind an interrupted debug session.
type StuckJob struct {
	// Identifier is the qualified job name, number/user/name.
	Identifier string `json:"identifier"`

	// Subsystem the job runs in, informational only.
	Subsystem string `json:"subsystem,omitempty"`
}
