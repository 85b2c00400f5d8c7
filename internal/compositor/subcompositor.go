package compositor

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

func (d *Display) bindSubcompositor(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
	r, err := client.Create(proto.WlSubcompositor, version, id)
	if err != nil {
		return nil, err
	}
	sc := &subcompositorClient{d: d}
	r.BindImplementation(sc, sc.dispatch, func(*objects.Resource) {})
	return r, nil
}

type subcompositorClient struct {
	d *Display
}

func (sc *subcompositorClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.SubcompositorRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.SubcompositorRequestGetSubsurface:
		id, err := args.Object()
		if err != nil {
			return err
		}
		surfaceID, err := args.Object()
		if err != nil {
			return err
		}
		parentID, err := args.Object()
		if err != nil {
			return err
		}
		surfRes, err := r.Client().LookupTyped(surfaceID, proto.WlSurface)
		if err != nil {
			return err
		}
		parentRes, err := r.Client().LookupTyped(parentID, proto.WlSurface)
		if err != nil {
			return err
		}
		s := sc.d.surfaceOf(surfRes)
		parent := sc.d.surfaceOf(parentRes)
		if s == nil || parent == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "get_subsurface: unknown surface object")
		}
		if err := s.SetRole(surface.RoleSubsurface, nil); err != nil {
			return protoerr.New(r.ID(), protoerr.CodeRole, "%s", err)
		}
		s.SetParent(parent, 0, 0)

		sr, err := r.Client().Create(proto.WlSubsurface, 1, id)
		if err != nil {
			return err
		}
		ss := &subsurfaceDispatch{s: s}
		sr.BindImplementation(ss, ss.dispatch, ss.destroy)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_subcompositor: unknown opcode %d", opcode)
	}
}

type subsurfaceDispatch struct {
	s *surface.Surface
}

func (ss *subsurfaceDispatch) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.SubsurfaceRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.SubsurfaceRequestSetPosition:
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		ss.s.SetPosition(x, y)
		return nil
	case proto.SubsurfaceRequestPlaceAbove:
		siblingID, err := args.Object()
		if err != nil {
			return err
		}
		sibling, err := ss.lookupSibling(r, siblingID)
		if err != nil {
			return err
		}
		if err := ss.s.PlaceAbove(sibling); err != nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "%s", err)
		}
		return nil
	case proto.SubsurfaceRequestPlaceBelow:
		siblingID, err := args.Object()
		if err != nil {
			return err
		}
		sibling, err := ss.lookupSibling(r, siblingID)
		if err != nil {
			return err
		}
		if err := ss.s.PlaceBelow(sibling); err != nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "%s", err)
		}
		return nil
	case proto.SubsurfaceRequestSetSync:
		ss.s.SetSubsurfaceSync(true)
		return nil
	case proto.SubsurfaceRequestSetDesync:
		ss.s.SetSubsurfaceSync(false)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_subsurface: unknown opcode %d", opcode)
	}
}

// lookupSibling resolves a place_above/place_below operand, which per
// protocol may be the subsurface's own parent as well as a sibling.
func (ss *subsurfaceDispatch) lookupSibling(r *objects.Resource, id uint32) (*surface.Surface, error) {
	res, err := r.Client().LookupTyped(id, proto.WlSurface)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "unknown surface operand %d", id)
	}
	sd, _ := res.Data().(*surfaceDispatch)
	if sd == nil {
		return nil, protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "object %d has no tracked surface", id)
	}
	return sd.s, nil
}

func (ss *subsurfaceDispatch) destroy(*objects.Resource) {
	ss.s.Destroy()
}
