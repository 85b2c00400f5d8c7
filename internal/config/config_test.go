package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wlhost/waycore/internal/xdgshell"
)

func TestDefaultHasSaneBaseline(t *testing.T) {
	cfg := Default()
	require.Equal(t, "wayland-0", cfg.SocketName)
	require.True(t, cfg.MultipleClients)
	require.Equal(t, xdgshell.ConfigureWatchdogTimeout, cfg.ConfigureWatchdog)
}

func TestLoadAppliesYamlOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waycore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("socket_name: wayland-test\nmultiple_clients: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "wayland-test", cfg.SocketName)
	require.False(t, cfg.MultipleClients)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadEmptyPathUsesDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().SocketName, cfg.SocketName)
}

func TestWatchWithoutPathDisablesReload(t *testing.T) {
	live, err := Watch("", zerolog.Nop())
	require.NoError(t, err)
	defer live.Close()
	require.Equal(t, "wayland-0", live.Get().SocketName)
}

func TestDecorationPolicyFollowsForceServerSideFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waycore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("force_server_side_decoration: true\n"), 0o644))

	live, err := Watch(path, zerolog.Nop())
	require.NoError(t, err)
	defer live.Close()
	require.Equal(t, xdgshell.DecorationServerSide, live.DecorationPolicy())
}

func TestDecorationPolicyDefaultsToClientSide(t *testing.T) {
	live, err := Watch("", zerolog.Nop())
	require.NoError(t, err)
	defer live.Close()
	require.Equal(t, xdgshell.DecorationClientSide, live.DecorationPolicy())
}
