package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokingUserPrefersNumericEnv(t *testing.T) {
	t.Setenv("SUDO_UID", "501")
	t.Setenv("SUDO_GID", "20")
	t.Setenv("SUDO_USER", "no-such-account")

	uid, gid, err := invokingUser()
	require.NoError(t, err)
	assert.Equal(t, 501, uid)
	assert.Equal(t, 20, gid)
}

func TestInvokingUserRejectsBadEnv(t *testing.T) {
	t.Setenv("SUDO_UID", "fivehundred")
	t.Setenv("SUDO_GID", "20")

	_, _, err := invokingUser()
	assert.Error(t, err)
}

func TestInvokingUserWithoutSudo(t *testing.T) {
	t.Setenv("SUDO_UID", "")
	t.Setenv("SUDO_GID", "")
	t.Setenv("SUDO_USER", "")

	_, _, err := invokingUser()
	assert.Error(t, err)
}

func TestHostOSVersionFromConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.OSVersion = "14.4.1"

	maj, min, pat, err := hostOSVersion(cfg)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{14, 4, 1}, [3]uint32{maj, min, pat})

	cfg.OSVersion = "not-a-release"
	_, _, _, err = hostOSVersion(cfg)
	assert.Error(t, err)
}
