package compositor

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

func (d *Display) bindCompositor(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
	r, err := client.Create(proto.WlCompositor, version, id)
	if err != nil {
		return nil, err
	}
	c := &compositorClient{d: d}
	r.BindImplementation(c, c.dispatch, func(*objects.Resource) {})
	return r, nil
}

type compositorClient struct {
	d *Display
}

func (c *compositorClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.CompositorRequestCreateSurface:
		id, err := args.Object()
		if err != nil {
			return err
		}
		sr, err := r.Client().Create(proto.WlSurface, r.Version(), id)
		if err != nil {
			return err
		}
		s := surface.New(sr, c.d.Scheduler, surface.Hooks{
			Committed:      c.d.render.SurfaceCommitted,
			BufferReplaced: c.d.onBufferReplaced,
		})
		sd := &surfaceDispatch{d: c.d, s: s}
		sr.BindImplementation(sd, sd.dispatch, sd.destroy)
		c.d.surfacesMu.Lock()
		c.d.surfaces[sr] = s
		c.d.surfacesMu.Unlock()
		return nil
	case proto.CompositorRequestCreateRegion:
		id, err := args.Object()
		if err != nil {
			return err
		}
		rr, err := r.Client().Create(proto.WlRegion, 1, id)
		if err != nil {
			return err
		}
		reg := &surface.Region{}
		rr.BindImplementation(reg, dispatchRegion, func(*objects.Resource) {})
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_compositor: unknown opcode %d", opcode)
	}
}

func dispatchRegion(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	reg := r.Data().(*surface.Region)
	switch opcode {
	case proto.RegionRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.RegionRequestAdd, proto.RegionRequestSubtract:
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
		rect := surface.Rect{X: x, Y: y, Width: w, Height: h}
		if opcode == proto.RegionRequestAdd {
			reg.Add(rect)
		} else {
			reg.Subtract(rect)
		}
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_region: unknown opcode %d", opcode)
	}
}

// onBufferReplaced defers wl_buffer.release until the renderer has
// confirmed it no longer reads the old buffer (§4.4, §5), rather than
// surface.BufferRecord's own synchronous default.
func (d *Display) onBufferReplaced(old *surface.BufferRecord) {
	d.render.RetireBuffer(old, old.Release)
}

// surfaceDispatch implements wl_surface's requests over a surface.Surface
// (§4.5).
type surfaceDispatch struct {
	d *Display
	s *surface.Surface
}

func (sd *surfaceDispatch) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.SurfaceRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.SurfaceRequestAttach:
		bufID, err := args.Object()
		if err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil { // dx, deprecated since v5 but still on the wire
			return err
		}
		if _, err := args.Int32(); err != nil { // dy
			return err
		}
		if bufID == 0 {
			sd.s.Attach(nil)
			return nil
		}
		bufRes, err := r.Client().LookupTyped(bufID, proto.WlBuffer)
		if err != nil {
			return err
		}
		rec, _ := bufRes.Data().(*surface.BufferRecord)
		if rec == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidObject, "object %d is not a buffer", bufID)
		}
		sd.s.Attach(rec)
		return nil
	case proto.SurfaceRequestDamage, proto.SurfaceRequestDamageBuffer:
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
		sd.s.Damage(surface.Rect{X: x, Y: y, Width: w, Height: h})
		return nil
	case proto.SurfaceRequestFrame:
		id, err := args.Object()
		if err != nil {
			return err
		}
		cb, err := r.Client().Create(proto.WlCallback, 1, id)
		if err != nil {
			return err
		}
		cb.BindImplementation(nil, func(*objects.Resource, uint16, *wire.ArgReader) error { return nil }, func(*objects.Resource) {})
		sd.s.RequestFrame(cb)
		return nil
	case proto.SurfaceRequestSetOpaqueRegion:
		regID, err := args.Object()
		if err != nil {
			return err
		}
		sd.s.SetOpaqueRegion(regionOpsOf(r.Client(), regID))
		return nil
	case proto.SurfaceRequestSetInputRegion:
		regID, err := args.Object()
		if err != nil {
			return err
		}
		sd.s.SetInputRegion(regionOpsOf(r.Client(), regID))
		return nil
	case proto.SurfaceRequestCommit:
		return sd.s.Commit()
	case proto.SurfaceRequestSetBufferTransform:
		v, err := args.Int32()
		if err != nil {
			return err
		}
		sd.s.SetBufferTransform(surface.Transform(v))
		return nil
	case proto.SurfaceRequestSetBufferScale:
		v, err := args.Int32()
		if err != nil {
			return err
		}
		sd.s.SetBufferScale(v)
		return nil
	case proto.SurfaceRequestOffset:
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		sd.s.SetPosition(x, y)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_surface: unknown opcode %d", opcode)
	}
}

func (sd *surfaceDispatch) destroy(r *objects.Resource) {
	sd.s.Destroy()
	sd.d.surfacesMu.Lock()
	delete(sd.d.surfaces, r)
	sd.d.surfacesMu.Unlock()
}

// regionOpsOf returns id's accumulated region ops, or nil for id == 0
// ("unset the region", §4.5).
func regionOpsOf(client *objects.Client, id uint32) []surface.RegionOp {
	if id == 0 {
		return nil
	}
	r := client.Lookup(id)
	if r == nil {
		return nil
	}
	reg, _ := r.Data().(*surface.Region)
	if reg == nil {
		return nil
	}
	return append([]surface.RegionOp(nil), reg.Ops...)
}
