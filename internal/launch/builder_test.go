package launch

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/pkg/types"
)

type fakeCommandStore struct {
	commands map[string]string
}

func (s *fakeCommandStore) Command(key string) (string, bool) {
	cmd, ok := s.commands[key]
	return cmd, ok
}

func (s *fakeCommandStore) SetCommand(key, command string) error {
	s.commands[key] = command
	return nil
}

type fakeEditor struct {
	edit func(initial string) (string, bool)
}

func (e *fakeEditor) EditCommand(ctx context.Context, initial string) (string, bool, error) {
	if e.edit == nil {
		return initial, true, nil
	}
	edited, ok := e.edit(initial)
	return edited, ok, nil
}

type fakeWorkspace map[string]string

func (w fakeWorkspace) LookupEnv(name string) (string, bool) {
	v, ok := w[name]
	return v, ok
}

func newTestBuilder(store *fakeCommandStore, editor *fakeEditor, ws fakeWorkspace) *Builder {
	return &Builder{
		Conn: types.Connection{
			Host:             "dev400",
			User:             "dev",
			DefaultLibraries: []string{"MYLIB", "QGPL"},
			CurrentLibrary:   "MYLIB",
		},
		Store:          store,
		Editor:         editor,
		Workspace:      ws,
		ServicePort:    8005,
		SEPPort:        8008,
		JobQueue:       "QSYSNOMAX",
		MessageQueue:   "*USRPRF",
		CertificateEnv: "DEBUG_CA_PATH",
		Logger:         zerolog.Nop(),
	}
}

func compat(version string, sep bool) types.Compatibility {
	return types.Compatibility{
		Installed:    true,
		Version:      version,
		MeetsMinimum: true,
		SupportsSEP:  sep,
	}
}

func TestBuildBatchDefaultCommand(t *testing.T) {
	store := &fakeCommandStore{commands: map[string]string{}}
	b := newTestBuilder(store, &fakeEditor{}, nil)

	cfg, err := b.Build(context.Background(),
		BatchRequest{Library: "MYLIB", Object: "MYPROG"},
		"secret", types.ObjectKindProgram, compat("3.1.0", true), types.Security{Secure: true})
	require.NoError(t, err)

	assert.Equal(t,
		"SBMJOB CMD(CALL PGM(MYLIB/MYPROG)) INLLIBL(MYLIB QGPL) CURLIB(MYLIB) JOBQ(QSYSNOMAX) MSGQ(*USRPRF) CPYENVVAR(*YES)",
		cfg.SubmitCommand)
	assert.Equal(t, "MYLIB", cfg.Library)
	assert.Equal(t, "MYPROG", cfg.Object)
	assert.Equal(t, types.DebugModeBatch, cfg.Mode)
	assert.True(t, cfg.Secure)
	assert.Equal(t, 8005, cfg.Port)
	assert.Equal(t, 8008, cfg.SEPPort)

	// The default command is remembered for the next launch.
	remembered, ok := store.Command("MYLIB/MYPROG")
	require.True(t, ok)
	assert.Equal(t, "CALL PGM(MYLIB/MYPROG)", remembered)
}

func TestBuildBatchRemembersEditedCommand(t *testing.T) {
	store := &fakeCommandStore{commands: map[string]string{
		"MYLIB/MYPROG": "CALL PGM(MYLIB/MYPROG) PARM('X')",
	}}
	var offered string
	editor := &fakeEditor{edit: func(initial string) (string, bool) {
		offered = initial
		return "CALL PGM(MYLIB/MYPROG) PARM('Y')", true
	}}
	b := newTestBuilder(store, editor, nil)

	cfg, err := b.Build(context.Background(),
		BatchRequest{Library: "MYLIB", Object: "MYPROG"},
		"secret", types.ObjectKindProgram, compat("3.1.0", true), types.Security{Secure: true})
	require.NoError(t, err)

	assert.Equal(t, "CALL PGM(MYLIB/MYPROG) PARM('X')", offered)
	assert.Contains(t, cfg.SubmitCommand, "CMD(CALL PGM(MYLIB/MYPROG) PARM('Y'))")

	remembered, _ := store.Command("MYLIB/MYPROG")
	assert.Equal(t, "CALL PGM(MYLIB/MYPROG) PARM('Y')", remembered)
}

func TestBuildBatchCancelledEditPersistsNothing(t *testing.T) {
	store := &fakeCommandStore{commands: map[string]string{}}
	editor := &fakeEditor{edit: func(string) (string, bool) { return "", false }}
	b := newTestBuilder(store, editor, nil)

	_, err := b.Build(context.Background(),
		BatchRequest{Library: "MYLIB", Object: "MYPROG"},
		"secret", types.ObjectKindProgram, compat("3.1.0", true), types.Security{Secure: true})
	require.Error(t, err)
	assert.True(t, bridgeerrors.IsUserCancelled(err))
	assert.Empty(t, store.commands)
}

func TestBuildBatchWorkspaceOverrides(t *testing.T) {
	store := &fakeCommandStore{commands: map[string]string{}}
	ws := fakeWorkspace{"CURLIB": "devlib", "LIBL": "devlib qgpl qtemp"}
	b := newTestBuilder(store, &fakeEditor{}, ws)

	cfg, err := b.Build(context.Background(),
		BatchRequest{Library: "MYLIB", Object: "MYPROG"},
		"secret", types.ObjectKindProgram, compat("3.1.0", true), types.Security{Secure: true})
	require.NoError(t, err)

	assert.Contains(t, cfg.SubmitCommand, "INLLIBL(DEVLIB QGPL QTEMP)")
	assert.Contains(t, cfg.SubmitCommand, "CURLIB(DEVLIB)")
}

func TestBuildSEPRequiresCapability(t *testing.T) {
	tests := []struct {
		version string
		sep     bool
		wantErr bool
	}{
		{"1.4.0", false, true},
		{"1.9.9", false, true},
		{"2.0.0", true, false},
		{"3.1.0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			b := newTestBuilder(&fakeCommandStore{commands: map[string]string{}}, &fakeEditor{}, nil)

			cfg, err := b.Build(context.Background(),
				SEPRequest{Library: "MYLIB", Object: "MYSRV"},
				"secret", types.ObjectKindServiceProgram, compat(tt.version, tt.sep), types.Security{Secure: true})

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, bridgeerrors.KindCapabilityMissing, bridgeerrors.KindOf(err))
				assert.Contains(t, err.Error(), tt.version)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "MYLIB/MYSRV *SRVPGM/*ALL/*ALL", cfg.SEPTarget)
		})
	}
}

func TestBuildSEPModuleProcedureFilters(t *testing.T) {
	b := newTestBuilder(&fakeCommandStore{commands: map[string]string{}}, &fakeEditor{}, nil)

	cfg, err := b.Build(context.Background(),
		SEPRequest{Library: "mylib", Object: "mysrv.pgm", Module: "mymod", Procedure: "doWork"},
		"secret", types.ObjectKindServiceProgram, compat("2.1.0", true), types.Security{Secure: true})
	require.NoError(t, err)

	assert.Equal(t, "MYLIB/MYSRV *SRVPGM/MYMOD/doWork", cfg.SEPTarget)
}

func TestNormalizeObjectIdempotent(t *testing.T) {
	inputs := []string{"myprog.pgm", "MYPROG.PGM", "myprog", " MyProg.pgm "}
	for _, in := range inputs {
		once := NormalizeObject(in)
		assert.Equal(t, "MYPROG", once)
		assert.Equal(t, once, NormalizeObject(once))
	}
}

func TestBuildCarriesSecurityFlags(t *testing.T) {
	b := newTestBuilder(&fakeCommandStore{commands: map[string]string{}}, &fakeEditor{}, nil)

	cfg, err := b.Build(context.Background(),
		BatchRequest{Library: "MYLIB", Object: "MYPROG"},
		"secret", types.ObjectKindProgram, compat("3.1.0", true),
		types.Security{Secure: false, SkipCertVerify: true})
	require.NoError(t, err)

	assert.False(t, cfg.Secure)
	assert.True(t, cfg.SkipCertVerify)
	assert.Equal(t, "DEBUG_CA_PATH", cfg.CertificateEnv)
}
