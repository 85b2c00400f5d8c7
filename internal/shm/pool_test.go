package shm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, size int64) *Pool {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "waycore-shm-pool-test")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	require.NoError(t, f.Truncate(size))
	p, err := NewPool(int(f.Fd()), size)
	require.NoError(t, err)
	return p
}

func TestNewPoolRejectsNonPositiveSize(t *testing.T) {
	_, err := NewPool(0, 0)
	require.Error(t, err)
}

func TestNewBufferValidatesGeometry(t *testing.T) {
	p := newTestPool(t, 4096)

	_, err := NewBuffer(p, 0, 0, 10, 40, FormatXrgb8888)
	require.Error(t, err, "zero width must be rejected")

	_, err = NewBuffer(p, 0, 10, 10, 10, FormatXrgb8888)
	require.Error(t, err, "stride smaller than width*bpp must be rejected")

	_, err = NewBuffer(p, 4096, 10, 10, 40, FormatXrgb8888)
	require.Error(t, err, "extent beyond pool size must be rejected")

	b, err := NewBuffer(p, 0, 10, 10, 40, FormatXrgb8888)
	require.NoError(t, err)
	require.Len(t, b.Pixels(), 400)
}

func TestResizeRefusesToTruncateOutstandingBuffer(t *testing.T) {
	p := newTestPool(t, 4096)
	_, err := NewBuffer(p, 0, 32, 32, 128, FormatXrgb8888) // extent 4096
	require.NoError(t, err)

	err = p.Resize(2048)
	require.Error(t, err)

	require.NoError(t, p.Resize(8192))
	require.Equal(t, int64(8192), p.Size())
}

func TestBufferDestroyReleasesPoolReference(t *testing.T) {
	p := newTestPool(t, 4096)
	b, err := NewBuffer(p, 0, 32, 32, 128, FormatXrgb8888)
	require.NoError(t, err)

	b.Destroy()
	b.Destroy() // idempotent

	// extent bookkeeping is cleared so a subsequent resize isn't blocked.
	require.NoError(t, p.Resize(100))
}

func TestUnsupportedFormatRejected(t *testing.T) {
	p := newTestPool(t, 4096)
	_, err := NewBuffer(p, 0, 10, 10, 40, Format(0xdeadbeef))
	require.Error(t, err)
}
