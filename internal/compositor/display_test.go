package compositor

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wlhost/waycore/internal/config"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

type recordingSender struct {
	sent []wire.Message
}

func (s *recordingSender) WriteMessage(m wire.Message) error {
	s.sent = append(s.sent, m)
	return nil
}

func newTestDisplay(t *testing.T) (*Display, *objects.Client, *recordingSender) {
	t.Helper()
	live, err := config.Watch("", zerolog.Nop())
	require.NoError(t, err)
	d := New(live, zerolog.Nop(), nil, nil, nil)

	sender := &recordingSender{}
	client := objects.NewClient(sender, zerolog.Nop())
	return d, client, sender
}

func TestRegistryAnnounceSeesEveryWiredGlobal(t *testing.T) {
	d, client, sender := newTestDisplay(t)
	reg, err := client.Create(proto.WlRegistry, 1, client.AllocateServerID())
	require.NoError(t, err)
	reg.BindImplementation(nil, nil, func(*objects.Resource) {})

	d.Registry.Announce(reg)
	// every global New() registered (compositor, subcompositor, shm, seat,
	// data device manager, xdg_wm_base, decoration manager, dmabuf,
	// viewporter, plus the stub globals) gets one registry.global event.
	require.Greater(t, len(sender.sent), 8)
}

func TestCreateSurfaceAttachShmBufferAndCommit(t *testing.T) {
	d, client, _ := newTestDisplay(t)

	compositorID := client.AllocateServerID()
	compositorRes, err := d.bindCompositor(client, proto.WlCompositor.Version, compositorID)
	require.NoError(t, err)

	shmID := client.AllocateServerID()
	shmRes, err := d.bindShm(client, proto.WlShm.Version, shmID)
	require.NoError(t, err)

	surfaceID := client.AllocateServerID()
	err = client.Dispatch(wire.NewArgWriter().Object(surfaceID).Build(compositorRes.ID(), proto.CompositorRequestCreateSurface))
	require.NoError(t, err)

	surfRes := client.Lookup(surfaceID)
	require.NotNil(t, surfRes)
	s := d.surfaceOf(surfRes)
	require.NotNil(t, s)
	require.NoError(t, s.SetRole(surface.RoleToplevel, nil))

	f, err := os.CreateTemp(t.TempDir(), "waycore-shm-test")
	require.NoError(t, err)
	defer f.Close()
	const poolSize = 4096
	require.NoError(t, f.Truncate(poolSize))

	poolID := client.AllocateServerID()
	err = client.Dispatch(wire.NewArgWriter().Object(poolID).Fd(int(f.Fd())).Int32(poolSize).
		Build(shmRes.ID(), proto.ShmRequestCreatePool))
	require.NoError(t, err)
	poolRes := client.Lookup(poolID)
	require.NotNil(t, poolRes)

	bufID := client.AllocateServerID()
	err = client.Dispatch(wire.NewArgWriter().Object(bufID).
		Int32(0).Int32(32).Int32(32).Int32(128).Uint32(1 /* xrgb8888 */).
		Build(poolRes.ID(), proto.ShmPoolRequestCreateBuffer))
	require.NoError(t, err)
	bufRes := client.Lookup(bufID)
	require.NotNil(t, bufRes)

	err = client.Dispatch(wire.NewArgWriter().Object(bufID).Int32(0).Int32(0).
		Build(surfRes.ID(), proto.SurfaceRequestAttach))
	require.NoError(t, err)

	err = client.Dispatch(wire.NewArgWriter().Build(surfRes.ID(), proto.SurfaceRequestCommit))
	require.NoError(t, err)

	w, h := s.Dimensions()
	require.Equal(t, int32(32), w)
	require.Equal(t, int32(32), h)
}

func TestCreateSurfaceDestroyRemovesFromTable(t *testing.T) {
	d, client, _ := newTestDisplay(t)
	compositorID := client.AllocateServerID()
	compositorRes, err := d.bindCompositor(client, proto.WlCompositor.Version, compositorID)
	require.NoError(t, err)

	surfaceID := client.AllocateServerID()
	require.NoError(t, client.Dispatch(wire.NewArgWriter().Object(surfaceID).
		Build(compositorRes.ID(), proto.CompositorRequestCreateSurface)))

	surfRes := client.Lookup(surfaceID)
	require.NotNil(t, surfRes)
	require.NotNil(t, d.surfaceOf(surfRes))

	client.Destroy(surfRes)
	require.Nil(t, d.surfaceOf(surfRes))
}
