package compositor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

func createTestSurface(t *testing.T, d *Display, client *objects.Client, compositorRes *objects.Resource, id uint32) *surface.Surface {
	t.Helper()
	require.NoError(t, client.Dispatch(wire.NewArgWriter().Object(id).
		Build(compositorRes.ID(), proto.CompositorRequestCreateSurface)))
	r := client.Lookup(id)
	require.NotNil(t, r)
	s := d.surfaceOf(r)
	require.NotNil(t, s)
	return s
}

func TestGetSubsurfaceAssignsRoleAndParent(t *testing.T) {
	d, client, _ := newTestDisplay(t)
	compositorID := client.AllocateServerID()
	compositorRes, err := d.bindCompositor(client, proto.WlCompositor.Version, compositorID)
	require.NoError(t, err)

	subID := client.AllocateServerID()
	subRes, err := d.bindSubcompositor(client, proto.WlSubcompositor.Version, subID)
	require.NoError(t, err)

	parentID := client.AllocateServerID()
	parent := createTestSurface(t, d, client, compositorRes, parentID)

	childID := client.AllocateServerID()
	child := createTestSurface(t, d, client, compositorRes, childID)

	subsurfID := client.AllocateServerID()
	require.NoError(t, client.Dispatch(wire.NewArgWriter().Object(subsurfID).Object(childID).Object(parentID).
		Build(subRes.ID(), proto.SubcompositorRequestGetSubsurface)))

	require.Equal(t, surface.RoleSubsurface, child.Role())
	_ = parent
}

func TestSubsurfaceSetPositionAndSync(t *testing.T) {
	d, client, _ := newTestDisplay(t)
	compositorID := client.AllocateServerID()
	compositorRes, err := d.bindCompositor(client, proto.WlCompositor.Version, compositorID)
	require.NoError(t, err)

	subID := client.AllocateServerID()
	subRes, err := d.bindSubcompositor(client, proto.WlSubcompositor.Version, subID)
	require.NoError(t, err)

	parentID := client.AllocateServerID()
	createTestSurface(t, d, client, compositorRes, parentID)
	childID := client.AllocateServerID()
	createTestSurface(t, d, client, compositorRes, childID)

	subsurfID := client.AllocateServerID()
	require.NoError(t, client.Dispatch(wire.NewArgWriter().Object(subsurfID).Object(childID).Object(parentID).
		Build(subRes.ID(), proto.SubcompositorRequestGetSubsurface)))
	subsurfRes := client.Lookup(subsurfID)
	require.NotNil(t, subsurfRes)

	require.NoError(t, client.Dispatch(wire.NewArgWriter().Int32(5).Int32(6).
		Build(subsurfRes.ID(), proto.SubsurfaceRequestSetPosition)))
	require.NoError(t, client.Dispatch(wire.NewArgWriter().Build(subsurfRes.ID(), proto.SubsurfaceRequestSetDesync)))
	require.NoError(t, client.Dispatch(wire.NewArgWriter().Build(subsurfRes.ID(), proto.SubsurfaceRequestSetSync)))
}
