package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIncludesHint(t *testing.T) {
	err := ServiceNotInstalled()
	assert.Contains(t, err.Error(), "not installed")
	assert.Contains(t, err.Error(), "Hint:")
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := CertificateIssue("download", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestKindOfMapsCodes(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{ServiceNotInstalled(), KindCapabilityMissing},
		{VersionBelowMinimum("0.9.0", "1.0.0"), KindCapabilityMissing},
		{SEPUnsupported("1.4.0"), KindCapabilityMissing},
		{CertificateIssue("generation", fmt.Errorf("boom")), KindCertificateIssue},
		{ObjectNotFound("MYLIB", "MYPROG"), KindResolutionFailure},
		{UserCancelled("password prompt"), KindUserCancelled},
		{LaunchFailed("MYLIB", "MYPROG", fmt.Errorf("boom")), KindLaunchFailure},
		{MissingParameter("library", "target library"), KindParameter},
		{RemoteFailure("query", fmt.Errorf("boom")), KindRemoteFailure},
		{fmt.Errorf("plain error"), KindRemoteFailure},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), "error: %v", tc.err)
	}
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("while launching: %w", SEPUnsupported("1.4.0"))
	assert.Equal(t, KindCapabilityMissing, KindOf(err))
}

func TestIsUserCancelled(t *testing.T) {
	assert.True(t, IsUserCancelled(UserCancelled("edit")))
	assert.True(t, IsUserCancelled(fmt.Errorf("wrapped: %w", UserCancelled("edit"))))
	assert.False(t, IsUserCancelled(ObjectNotFound("MYLIB", "MYPROG")))
	assert.False(t, IsUserCancelled(fmt.Errorf("plain")))
}

func TestFromErrorPassesBridgeErrorsThrough(t *testing.T) {
	original := VersionBelowMinimum("0.9.0", "1.0.0")
	got := FromError(fmt.Errorf("wrapped: %w", original))
	require.Same(t, original, got)

	wrapped := FromError(fmt.Errorf("plain failure"))
	assert.Equal(t, CodeRemoteFailure, wrapped.Code)
	assert.Equal(t, "plain failure", wrapped.Message)
}

func TestVersionBelowMinimumDetails(t *testing.T) {
	err := VersionBelowMinimum("0.9.0", "1.0.0")
	assert.Equal(t, "0.9.0", err.Details["version"])
	assert.Equal(t, "1.0.0", err.Details["minimum"])
}
