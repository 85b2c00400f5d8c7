package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmdConstructsWithServeAndVersionSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["version"])
}

func TestServeCmdRegistersExpectedFlags(t *testing.T) {
	cmd := newServeCmd()
	for _, name := range []string{"config", "socket-name", "tcp-addr", "log-pretty", "frame-rate"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
