package xdgshell

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// XdgSurface wraps a wl_surface with the xdg_surface configure/ack
// handshake and optional window-geometry clip (§4.6).
type XdgSurface struct {
	mgr      *Manager
	resource *objects.Resource
	Surface  *surface.Surface

	mu             sync.Mutex
	windowGeometry surface.Rect
	hasGeometry    bool
	lastAcked      uint32
	roleResource   *objects.Resource // *Toplevel or *Popup's resource, once assigned
}

func newXdgSurface(mgr *Manager, client *objects.Client, id uint32, s *surface.Surface) error {
	r, err := client.Create(proto.XdgSurface, 4, id)
	if err != nil {
		return err
	}
	xs := &XdgSurface{mgr: mgr, resource: r, Surface: s}
	r.BindImplementation(xs, xs.dispatch, xs.destroy)
	return nil
}

func (xs *XdgSurface) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.XdgSurfaceRequestDestroy:
		if xs.Surface.Role() != surface.RoleNone && xs.roleResourceLive() {
			return protoerr.New(r.ID(), protoerr.CodeDefunctSurfaces, "xdg_surface destroyed before its role object")
		}
		r.Client().Destroy(r)
		return nil
	case proto.XdgSurfaceRequestGetToplevel:
		id, err := args.Object()
		if err != nil {
			return err
		}
		return newToplevel(xs, r.Client(), id)
	case proto.XdgSurfaceRequestGetPopup:
		id, err := args.Object()
		if err != nil {
			return err
		}
		parentID, err := args.Object()
		if err != nil {
			return err
		}
		positionerID, err := args.Object()
		if err != nil {
			return err
		}
		var parent *XdgSurface
		if parentID != 0 {
			parentRes, err := r.Client().LookupTyped(parentID, proto.XdgSurface)
			if err != nil {
				return err
			}
			parent, _ = parentRes.Data().(*XdgSurface)
		}
		posRes, err := r.Client().LookupTyped(positionerID, proto.XdgPositioner)
		if err != nil {
			return err
		}
		pos, _ := posRes.Data().(*Positioner)
		if pos == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidObject, "object %d is not a positioner", positionerID)
		}
		return newPopup(xs, r.Client(), id, parent, pos)
	case proto.XdgSurfaceRequestSetWindowGeometry:
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		if w < 1 || h < 1 {
			return protoerr.New(r.ID(), protoerr.CodeInvalidDimensions, "xdg_surface.set_window_geometry requires a positive rect")
		}
		xs.mu.Lock()
		xs.windowGeometry = surface.Rect{X: x, Y: y, Width: w, Height: h}
		xs.hasGeometry = true
		xs.mu.Unlock()
		return nil
	case proto.XdgSurfaceRequestAckConfigure:
		serial, err := args.Uint32()
		if err != nil {
			return err
		}
		if owner := xs.mgr.ack(serial); owner != xs {
			return protoerr.New(r.ID(), protoerr.CodeInvalidSerial, "ack_configure for unknown or foreign serial %d", serial)
		}
		xs.mu.Lock()
		xs.lastAcked = serial
		xs.mu.Unlock()
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "xdg_surface: unknown opcode %d", opcode)
	}
}

func (xs *XdgSurface) roleResourceLive() bool {
	xs.mu.Lock()
	defer xs.mu.Unlock()
	return xs.roleResource != nil && !xs.roleResource.Destroyed()
}

func (xs *XdgSurface) setRoleResource(r *objects.Resource) {
	xs.mu.Lock()
	xs.roleResource = r
	xs.mu.Unlock()
}

func (xs *XdgSurface) destroy(*objects.Resource) {
	xs.mgr.forget(xs)
}

// WindowGeometry returns the client-declared clip rect, or the surface's
// full buffer-derived extent if none was set (§4.6).
func (xs *XdgSurface) WindowGeometry() surface.Rect {
	xs.mu.Lock()
	defer xs.mu.Unlock()
	if xs.hasGeometry {
		return xs.windowGeometry
	}
	w, h := xs.Surface.Dimensions()
	return surface.Rect{Width: w, Height: h}
}

// SendConfigure emits xdg_surface.configure with a freshly minted serial
// and registers it with the manager's ack-watchdog bookkeeping (§4.6).
func (xs *XdgSurface) SendConfigure() uint32 {
	serial := xs.mgr.nextSerial()
	xs.mgr.trackConfigure(xs, serial)
	_ = xs.resource.SendEvent(proto.XdgSurfaceEventConfigure, wire.NewArgWriter().Uint32(serial))
	return serial
}
