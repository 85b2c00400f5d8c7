package protoerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(5, CodeInvalidObject, "unknown object %d", 5)
	require.Equal(t, uint32(5), err.Object)
	require.Equal(t, CodeInvalidObject, err.Code)
	require.Contains(t, err.Error(), "unknown object 5")
}

func TestFatalDistinguishesProtocolErrors(t *testing.T) {
	require.True(t, Fatal(New(1, CodeInvalidMethod, "bad")))
	require.False(t, Fatal(errors.New("just a local error")))
}
