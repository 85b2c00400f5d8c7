package xdgshell

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wlhost/waycore/internal/frame"
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

type surfaceTable struct {
	mu sync.Mutex
	m  map[*objects.Resource]*surface.Surface
}

func newSurfaceTable() *surfaceTable {
	return &surfaceTable{m: make(map[*objects.Resource]*surface.Surface)}
}

func (t *surfaceTable) of(r *objects.Resource) *surface.Surface {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m[r]
}

func (t *surfaceTable) put(r *objects.Resource, s *surface.Surface) {
	t.mu.Lock()
	t.m[r] = s
	t.mu.Unlock()
}

func newTestWlSurface(t *testing.T, c *objects.Client, id uint32) (*objects.Resource, *surface.Surface) {
	t.Helper()
	r, err := c.Create(proto.WlSurface, 1, id)
	require.NoError(t, err)
	r.BindImplementation(nil, func(*objects.Resource, uint16, *wire.ArgReader) error { return nil }, nil)
	return r, surface.New(r, frame.NewScheduler(), surface.Hooks{})
}

func TestGetToplevelSendsInitialHandshake(t *testing.T) {
	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	table := newSurfaceTable()

	mgr := NewManager(zerolog.Nop())
	wmBaseID := c.AllocateServerID()
	_, err := mgr.Bind(table.of)(c, proto.XdgWmBase.Version, wmBaseID)
	require.NoError(t, err)
	wmRes := c.Lookup(wmBaseID)

	surfID := c.AllocateServerID()
	surfRes, surf := newTestWlSurface(t, c, surfID)
	table.put(surfRes, surf)

	xdgSurfID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(xdgSurfID).Object(surfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	xdgSurfRes := c.Lookup(xdgSurfID)
	require.NotNil(t, xdgSurfRes)

	before := len(sender.sent)
	toplevelID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(toplevelID).
		Build(xdgSurfRes.ID(), proto.XdgSurfaceRequestGetToplevel)))

	// configure_bounds, wm_capabilities, toplevel.configure, xdg_surface.configure
	require.Equal(t, 4, len(sender.sent)-before)
	require.Equal(t, surface.RoleToplevel, surf.Role())
}

func TestToplevelSetTitleAndMaximizedTriggersConfigure(t *testing.T) {
	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	table := newSurfaceTable()
	mgr := NewManager(zerolog.Nop())

	wmBaseID := c.AllocateServerID()
	_, _ = mgr.Bind(table.of)(c, proto.XdgWmBase.Version, wmBaseID)
	wmRes := c.Lookup(wmBaseID)

	surfID := c.AllocateServerID()
	surfRes, surf := newTestWlSurface(t, c, surfID)
	table.put(surfRes, surf)

	xdgSurfID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(xdgSurfID).Object(surfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	xdgSurfRes := c.Lookup(xdgSurfID)

	toplevelID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(toplevelID).
		Build(xdgSurfRes.ID(), proto.XdgSurfaceRequestGetToplevel)))
	toplevelRes := c.Lookup(toplevelID)

	require.NoError(t, c.Dispatch(wire.NewArgWriter().String("a title").
		Build(toplevelRes.ID(), proto.ToplevelRequestSetTitle)))
	top, _ := toplevelRes.Data().(*Toplevel)
	require.Equal(t, "a title", top.Title())

	before := len(sender.sent)
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Build(toplevelRes.ID(), proto.ToplevelRequestSetMaximized)))
	// toplevel.configure + xdg_surface.configure
	require.Equal(t, 2, len(sender.sent)-before)
}

func TestAckConfigureRejectsUnknownSerial(t *testing.T) {
	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	table := newSurfaceTable()
	mgr := NewManager(zerolog.Nop())

	wmBaseID := c.AllocateServerID()
	_, _ = mgr.Bind(table.of)(c, proto.XdgWmBase.Version, wmBaseID)
	wmRes := c.Lookup(wmBaseID)

	surfID := c.AllocateServerID()
	surfRes, surf := newTestWlSurface(t, c, surfID)
	table.put(surfRes, surf)

	xdgSurfID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(xdgSurfID).Object(surfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	xdgSurfRes := c.Lookup(xdgSurfID)

	err := c.Dispatch(wire.NewArgWriter().Uint32(999).Build(xdgSurfRes.ID(), proto.XdgSurfaceRequestAckConfigure))
	require.Error(t, err)
}

func TestXdgSurfaceDestroyBeforeRoleObjectIsRejected(t *testing.T) {
	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	table := newSurfaceTable()
	mgr := NewManager(zerolog.Nop())

	wmBaseID := c.AllocateServerID()
	_, _ = mgr.Bind(table.of)(c, proto.XdgWmBase.Version, wmBaseID)
	wmRes := c.Lookup(wmBaseID)

	surfID := c.AllocateServerID()
	surfRes, surf := newTestWlSurface(t, c, surfID)
	table.put(surfRes, surf)

	xdgSurfID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(xdgSurfID).Object(surfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	xdgSurfRes := c.Lookup(xdgSurfID)

	toplevelID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(toplevelID).
		Build(xdgSurfRes.ID(), proto.XdgSurfaceRequestGetToplevel)))

	err := c.Dispatch(wire.NewArgWriter().Build(xdgSurfRes.ID(), proto.XdgSurfaceRequestDestroy))
	require.Error(t, err)
}

func TestPopupResolvesAgainstPositioner(t *testing.T) {
	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	table := newSurfaceTable()
	mgr := NewManager(zerolog.Nop())

	wmBaseID := c.AllocateServerID()
	_, _ = mgr.Bind(table.of)(c, proto.XdgWmBase.Version, wmBaseID)
	wmRes := c.Lookup(wmBaseID)

	parentSurfID := c.AllocateServerID()
	parentSurfRes, parentSurf := newTestWlSurface(t, c, parentSurfID)
	table.put(parentSurfRes, parentSurf)
	parentXdgID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(parentXdgID).Object(parentSurfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	parentXdgRes := c.Lookup(parentXdgID)

	posID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(posID).
		Build(wmRes.ID(), proto.WmBaseRequestCreatePositioner)))
	posRes := c.Lookup(posID)
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Int32(50).Int32(30).
		Build(posRes.ID(), proto.PositionerRequestSetSize)))
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Int32(0).Int32(0).Int32(10).Int32(10).
		Build(posRes.ID(), proto.PositionerRequestSetAnchorRect)))

	popupSurfID := c.AllocateServerID()
	popupSurfRes, popupSurf := newTestWlSurface(t, c, popupSurfID)
	table.put(popupSurfRes, popupSurf)
	popupXdgID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(popupXdgID).Object(popupSurfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	popupXdgRes := c.Lookup(popupXdgID)

	popupID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(popupID).Object(parentXdgID).Object(posID).
		Build(popupXdgRes.ID(), proto.XdgSurfaceRequestGetPopup)))

	require.Equal(t, surface.RolePopup, popupSurf.Role())
}

func TestDecorationManagerDefaultsToPolicyMode(t *testing.T) {
	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	table := newSurfaceTable()
	mgr := NewManager(zerolog.Nop())

	wmBaseID := c.AllocateServerID()
	_, _ = mgr.Bind(table.of)(c, proto.XdgWmBase.Version, wmBaseID)
	wmRes := c.Lookup(wmBaseID)

	surfID := c.AllocateServerID()
	surfRes, surf := newTestWlSurface(t, c, surfID)
	table.put(surfRes, surf)
	xdgSurfID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(xdgSurfID).Object(surfID).
		Build(wmRes.ID(), proto.WmBaseRequestGetXdgSurface)))
	xdgSurfRes := c.Lookup(xdgSurfID)
	toplevelID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(toplevelID).
		Build(xdgSurfRes.ID(), proto.XdgSurfaceRequestGetToplevel)))

	policy := func() DecorationMode { return DecorationServerSide }
	decoMgrID := c.AllocateServerID()
	_, err := BindDecorationManager(policy)(c, proto.ZxdgDecorationManagerV1.Version, decoMgrID)
	require.NoError(t, err)
	decoMgrRes := c.Lookup(decoMgrID)

	decoID := c.AllocateServerID()
	before := len(sender.sent)
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(decoID).Object(toplevelID).
		Build(decoMgrRes.ID(), proto.DecorationManagerRequestGetToplevelDecoration)))
	require.Equal(t, 2, len(sender.sent)-before) // decoration.configure + xdg_surface.configure

	decoRes := c.Lookup(decoID)
	deco, _ := decoRes.Data().(*toplevelDecoration)
	require.NotNil(t, deco)
	deco.mu.Lock()
	initial := deco.mode
	deco.mu.Unlock()
	require.Equal(t, DecorationServerSide, initial) // the policy's mode before any set_mode

	before = len(sender.sent)
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Uint32(uint32(DecorationClientSide)).
		Build(decoRes.ID(), proto.ToplevelDecorationRequestSetMode)))
	require.Equal(t, 2, len(sender.sent)-before) // decoration.configure + xdg_surface.configure

	// a forced server-side policy overrides the client's requested mode.
	deco.mu.Lock()
	mode := deco.mode
	deco.mu.Unlock()
	require.Equal(t, DecorationServerSide, mode)
}
