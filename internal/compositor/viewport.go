package compositor

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

func (d *Display) bindViewporter(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
	r, err := client.Create(proto.WpViewporter, version, id)
	if err != nil {
		return nil, err
	}
	vp := &viewporterClient{d: d}
	r.BindImplementation(vp, vp.dispatch, func(*objects.Resource) {})
	return r, nil
}

type viewporterClient struct {
	d *Display
}

func (vp *viewporterClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.ViewporterRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.ViewporterRequestGetViewport:
		id, err := args.Object()
		if err != nil {
			return err
		}
		surfaceID, err := args.Object()
		if err != nil {
			return err
		}
		surfRes, err := r.Client().LookupTyped(surfaceID, proto.WlSurface)
		if err != nil {
			return err
		}
		s := vp.d.surfaceOf(surfRes)
		if s == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "get_viewport: unknown surface object")
		}
		vr, err := r.Client().Create(proto.WpViewport, 1, id)
		if err != nil {
			return err
		}
		vc := &viewportClient{s: s}
		vr.BindImplementation(vc, vc.dispatch, func(*objects.Resource) {})
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wp_viewporter: unknown opcode %d", opcode)
	}
}

type viewportClient struct {
	s   *surface.Surface
	set surface.Viewport
}

func (vc *viewportClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.ViewportRequestDestroy:
		vc.set.Set = false
		vc.s.SetViewport(vc.set)
		r.Client().Destroy(r)
		return nil
	case proto.ViewportRequestSetSource:
		x, err := args.Fixed()
		if err != nil {
			return err
		}
		y, err := args.Fixed()
		if err != nil {
			return err
		}
		w, err := args.Fixed()
		if err != nil {
			return err
		}
		h, err := args.Fixed()
		if err != nil {
			return err
		}
		vc.set.Set = true
		vc.set.SrcX, vc.set.SrcY = x.Float64(), y.Float64()
		vc.set.SrcW, vc.set.SrcH = w.Float64(), h.Float64()
		vc.s.SetViewport(vc.set)
		return nil
	case proto.ViewportRequestSetDestination:
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		vc.set.Set = true
		vc.set.DstW, vc.set.DstH = w, h
		vc.s.SetViewport(vc.set)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wp_viewport: unknown opcode %d", opcode)
	}
}
