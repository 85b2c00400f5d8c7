package xdgshell

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNextSerialIsMonotonic(t *testing.T) {
	m := NewManager(zerolog.Nop())
	a := m.nextSerial()
	b := m.nextSerial()
	require.Less(t, a, b)
}

func TestDoubleAckOfSameSerialIsNoOp(t *testing.T) {
	m := NewManager(zerolog.Nop())
	xs := &XdgSurface{}
	serial := m.nextSerial()
	m.trackConfigure(xs, serial)

	require.Equal(t, xs, m.ack(serial))
	require.Equal(t, xs, m.ack(serial)) // re-ack of the same serial is a no-op, not an error
}

func TestAckOfSupersededSerialIsRejected(t *testing.T) {
	m := NewManager(zerolog.Nop())
	xs := &XdgSurface{}
	first := m.nextSerial()
	m.trackConfigure(xs, first)
	require.Equal(t, xs, m.ack(first))

	second := m.nextSerial()
	m.trackConfigure(xs, second)
	require.Equal(t, xs, m.ack(second))

	require.Nil(t, m.ack(first)) // superseded by the ack of `second`
}

func TestAckOfUnknownSerialReturnsNil(t *testing.T) {
	m := NewManager(zerolog.Nop())
	require.Nil(t, m.ack(999))
}

func TestForgetDropsSurfaceFromAckedAndInflightBookkeeping(t *testing.T) {
	m := NewManager(zerolog.Nop())
	xs := &XdgSurface{}
	serial := m.nextSerial()
	m.trackConfigure(xs, serial)
	require.Equal(t, xs, m.ack(serial))

	m.forget(xs)
	require.Nil(t, m.ack(serial))
}

func TestCheckWatchdogDoesNotPanicOnEmptyInflight(t *testing.T) {
	m := NewManager(zerolog.Nop())
	m.CheckWatchdog()
}

func TestCheckWatchdogLeavesFreshConfiguresUntouched(t *testing.T) {
	m := NewManager(zerolog.Nop())
	serial := m.nextSerial()
	m.trackConfigure(&XdgSurface{}, serial)
	m.CheckWatchdog()
	// still tracked: a fresh configure is not stale yet.
	require.NotNil(t, m.ack(serial))
}

func TestConfigureWatchdogTimeoutIsPositive(t *testing.T) {
	require.Greater(t, ConfigureWatchdogTimeout, time.Duration(0))
}
