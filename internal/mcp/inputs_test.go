package mcp

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolInputsServeStagedValues(t *testing.T) {
	inputs := &toolInputs{}
	inputs.stage("secret", "CALL PGM(MYLIB/MYPROG) PARM('X')", true, "DEVLIB", "DEVLIB QGPL")

	pw, err := inputs.AskPassword(context.Background(), "dev@dev400")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	edited, ok, err := inputs.EditCommand(context.Background(), "CALL PGM(MYLIB/MYPROG)")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CALL PGM(MYLIB/MYPROG) PARM('X')", edited)

	curlib, ok := inputs.LookupEnv("CURLIB")
	require.True(t, ok)
	assert.Equal(t, "DEVLIB", curlib)

	libl, ok := inputs.LookupEnv("LIBL")
	require.True(t, ok)
	assert.Equal(t, "DEVLIB QGPL", libl)
}

func TestToolInputsWithoutCommandKeepDefault(t *testing.T) {
	inputs := &toolInputs{}
	inputs.stage("secret", "", false, "", "")

	edited, ok, err := inputs.EditCommand(context.Background(), "CALL PGM(MYLIB/MYPROG)")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CALL PGM(MYLIB/MYPROG)", edited)

	_, ok = inputs.LookupEnv("CURLIB")
	assert.False(t, ok)
	_, ok = inputs.LookupEnv("UNKNOWN")
	assert.False(t, ok)
}

func TestToolInputsRestageReplacesPreviousCall(t *testing.T) {
	inputs := &toolInputs{}
	inputs.stage("first", "CMD1", true, "", "")
	inputs.stage("", "", false, "", "")

	pw, err := inputs.AskPassword(context.Background(), "dev@dev400")
	require.NoError(t, err)
	assert.Empty(t, pw)

	edited, ok, err := inputs.EditCommand(context.Background(), "CALL PGM(MYLIB/MYPROG)")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CALL PGM(MYLIB/MYPROG)", edited)
}

func TestRecordingNotifierDrain(t *testing.T) {
	n := &recordingNotifier{logger: zerolog.Nop()}

	n.Info("service check passed")
	n.Warn("version is old")
	n.Error("launch failed")
	assert.False(t, n.OfferAction("end jobs?", "End jobs"))

	notices := n.drain()
	assert.Equal(t, []string{"service check passed", "version is old", "launch failed", "end jobs?"}, notices)

	// Drained notices do not reappear.
	assert.Empty(t, n.drain())
}
