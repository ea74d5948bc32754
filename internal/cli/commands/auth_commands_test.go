package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ProductManager/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginStatusLogout(t *testing.T) {
	ts := newServer(t)
	cfg := withTempConfig(t, ts.URL)
	out := captureOut(t)
	ctx := context.Background()

	require.NoError(t, (statusCmd{}).Run(ctx, cfg, nil))
	assert.Contains(t, out.String(), "Not logged in")

	require.NoError(t, (registerCmd{}).Run(ctx, cfg, []string{"ann@example.com", "pw"}))
	assert.Contains(t, out.String(), "Registered")
	_, err := os.Stat(cfg.SessionFile)
	require.NoError(t, err, "session saved")
	entries, err := os.ReadDir(cfg.ClientDBPath)
	require.NoError(t, err)
	require.Len(t, entries, 1, "user cache created")
	_, err = os.Stat(filepath.Join(cfg.ClientDBPath, entries[0].Name(), "client.sqlite"))
	require.NoError(t, err)

	// taken login
	err = (registerCmd{}).Run(ctx, cfg, []string{"ann@example.com", "x"})
	require.Error(t, err)
	assert.Equal(t, "login already taken", err.Error())

	require.NoError(t, (statusCmd{}).Run(ctx, cfg, nil))
	assert.Contains(t, out.String(), "Logged in as ann@example.com")

	require.NoError(t, (logoutCmd{}).Run(ctx, cfg, nil))
	_, err = os.Stat(cfg.SessionFile)
	assert.True(t, os.IsNotExist(err), "session removed")

	err = (loginCmd{}).Run(ctx, cfg, []string{"ann@example.com", "bad"})
	require.Error(t, err)
	assert.Equal(t, "invalid login or password", err.Error())

	require.NoError(t, (loginCmd{}).Run(ctx, cfg, []string{"ann@example.com", "pw"}))
	assert.Contains(t, out.String(), "Logged in (user id ")
}

func TestAuthCommands_Usage(t *testing.T) {
	cfg := &config.Config{}
	ctx := context.Background()
	assert.ErrorIs(t, (loginCmd{}).Run(ctx, cfg, []string{"onlyLogin"}), ErrUsage)
	assert.ErrorIs(t, (registerCmd{}).Run(ctx, cfg, []string{"a", "b", "c"}), ErrUsage)
	assert.ErrorIs(t, (logoutCmd{}).Run(ctx, cfg, []string{"x"}), ErrUsage)
	assert.ErrorIs(t, (statusCmd{}).Run(ctx, cfg, []string{"extra"}), ErrUsage)
}

func TestStatus_ServerRejectsSession(t *testing.T) {
	ts := newServer(t)
	cfg := withTempConfig(t, ts.URL)
	captureOut(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.SessionFile), 0o700))
	require.NoError(t, os.WriteFile(cfg.SessionFile, []byte(`{"token":"forged","user_id":"u1"}`), 0o600))

	err := (statusCmd{}).Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "run login"))
}
