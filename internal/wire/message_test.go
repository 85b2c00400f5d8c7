package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgWriterReaderRoundTrip(t *testing.T) {
	w := NewArgWriter().
		Uint32(42).
		Int32(-7).
		Fixed(FixedFromFloat64(3.5)).
		Object(99).
		String("hello").
		Array([]byte{1, 2, 3}).
		Fd(11)

	m := w.Build(1, 5)
	require.Equal(t, uint32(1), m.Sender)
	require.Equal(t, uint16(5), m.Opcode)
	require.Equal(t, []int{11}, m.Fds)

	r := NewArgReader(m)

	u, err := r.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), u)

	i, err := r.Int32()
	require.NoError(t, err)
	require.Equal(t, int32(-7), i)

	f, err := r.Fixed()
	require.NoError(t, err)
	require.InDelta(t, 3.5, f.Float64(), 0.01)

	obj, err := r.Object()
	require.NoError(t, err)
	require.Equal(t, uint32(99), obj)

	s, err := r.String()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	arr, err := r.Array()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, arr)

	fd, err := r.Fd()
	require.NoError(t, err)
	require.Equal(t, 11, fd)

	require.True(t, r.Done())
}

func TestArgWriterStringPadding(t *testing.T) {
	// "ab" + NUL = 3 bytes, padded to 4.
	w := NewArgWriter().String("ab")
	m := w.Build(1, 0)
	require.Equal(t, 8, len(m.Args)) // 4-byte length prefix + 4 padded bytes
}

func TestArgReaderShortMessage(t *testing.T) {
	r := NewArgReader(Message{Args: []byte{1, 2}})
	_, err := r.Uint32()
	require.Error(t, err)
}

func TestArgReaderZeroLengthStringRejected(t *testing.T) {
	w := NewArgWriter().Uint32(0)
	r := NewArgReader(w.Build(1, 0))
	_, err := r.String()
	require.Error(t, err)
}

func TestArgReaderFdExhausted(t *testing.T) {
	r := NewArgReader(Message{})
	_, err := r.Fd()
	require.Error(t, err)
}

func TestArgReaderSkipAll(t *testing.T) {
	w := NewArgWriter().Uint32(1).Uint32(2).Uint32(3)
	r := NewArgReader(w.Build(1, 0))
	require.False(t, r.Done())
	r.SkipAll()
	require.True(t, r.Done())
}

func TestArgReaderArrayUint32(t *testing.T) {
	w := NewArgWriter().Array([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	r := NewArgReader(w.Build(1, 0))
	vals, err := r.ArrayUint32()
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, vals)
}

func TestArgReaderArrayUint32BadLength(t *testing.T) {
	w := NewArgWriter().Array([]byte{1, 2, 3})
	r := NewArgReader(w.Build(1, 0))
	_, err := r.ArrayUint32()
	require.Error(t, err)
}

func TestBuildPanicsOnOversizedMessage(t *testing.T) {
	defer func() {
		require.NotNil(t, recover())
	}()
	w := NewArgWriter()
	w.buf = make([]byte, 0xffff)
	w.Build(1, 0)
}
