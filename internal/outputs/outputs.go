// Package outputs implements wl_output (§9, supplemented: the distilled
// spec omits display geometry advertisement entirely, but every real
// client — including ones only exercising xdg_popup constraint adjustment
// — expects at least one output to bind).
package outputs

import (
	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// Output is one static display description; this engine doesn't model
// hotplug, so its geometry is fixed at construction.
type Output struct {
	X, Y                  int32
	WidthMM, HeightMM     int32
	Make, Model           string
	WidthPx, HeightPx     int32
	RefreshMilliHz        int32
	Scale                 int32
}

// Bounds returns the output's placement rect in logical coordinates, in the
// form xdgshell.Positioner.Constrain takes as its bounds argument (no
// caller in this engine passes one to the other).
func (o Output) Bounds() surface.Rect {
	return surface.Rect{X: o.X, Y: o.Y, Width: o.WidthPx / max1(o.Scale), Height: o.HeightPx / max1(o.Scale)}
}

func max1(v int32) int32 {
	if v < 1 {
		return 1
	}
	return v
}

// Bind installs wl_output's bind function, sending the full
// geometry/mode/scale/done event sequence once per bind (§6).
func (o Output) Bind() globalreg.BindFunc {
	return func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
		r, err := client.Create(proto.WlOutput, version, id)
		if err != nil {
			return nil, err
		}
		r.BindImplementation(o, func(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
			switch opcode {
			case proto.OutputRequestRelease:
				r.Client().Destroy(r)
				return nil
			default:
				return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_output: unknown opcode %d", opcode)
			}
		}, func(*objects.Resource) {})

		_ = r.SendEvent(proto.OutputEventGeometry, wire.NewArgWriter().
			Int32(o.X).Int32(o.Y).Int32(o.WidthMM).Int32(o.HeightMM).
			Int32(0 /* subpixel unknown */).String(o.Make).String(o.Model).Int32(0 /* transform normal */))
		const modeCurrentPreferred = 0x3
		_ = r.SendEvent(proto.OutputEventMode, wire.NewArgWriter().
			Uint32(modeCurrentPreferred).Int32(o.WidthPx).Int32(o.HeightPx).Int32(o.RefreshMilliHz))
		if version >= 2 {
			_ = r.SendEvent(proto.OutputEventScale, wire.NewArgWriter().Int32(o.Scale))
		}
		if version >= 2 {
			_ = r.SendEvent(proto.OutputEventDone, wire.NewArgWriter())
		}
		return r, nil
	}
}
