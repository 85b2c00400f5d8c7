package seat

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// Touch is one client's bound wl_touch object.
type Touch struct {
	sc       *seatClient
	resource *objects.Resource
}

func newTouch(sc *seatClient, client *objects.Client, id uint32) (*Touch, error) {
	r, err := client.Create(proto.WlTouch, 7, id)
	if err != nil {
		return nil, err
	}
	t := &Touch{sc: sc, resource: r}
	r.BindImplementation(t, t.dispatch, t.destroy)
	return t, nil
}

func (t *Touch) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.TouchRequestRelease:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_touch: unknown opcode %d", opcode)
	}
}

func (t *Touch) destroy(*objects.Resource) {}

// Down/Up/Motion/Frame/Cancel implement the touch-point lifecycle (§4.7);
// id is the per-touch-point identifier the client correlates across the
// sequence.
func (t *Touch) Down(timeMs uint32, id int32, target *surface.Surface, x, y wire.Fixed) {
	serial := NextSerial()
	_ = t.resource.SendEvent(proto.TouchEventDown, wire.NewArgWriter().
		Uint32(serial).Uint32(timeMs).Object(target.Resource.ID()).Int32(id).Fixed(x).Fixed(y))
}

func (t *Touch) Up(timeMs uint32, id int32) {
	serial := NextSerial()
	_ = t.resource.SendEvent(proto.TouchEventUp, wire.NewArgWriter().Uint32(serial).Uint32(timeMs).Int32(id))
}

func (t *Touch) Motion(timeMs uint32, id int32, x, y wire.Fixed) {
	_ = t.resource.SendEvent(proto.TouchEventMotion, wire.NewArgWriter().Uint32(timeMs).Int32(id).Fixed(x).Fixed(y))
}

func (t *Touch) Frame() {
	_ = t.resource.SendEvent(proto.TouchEventFrame, wire.NewArgWriter())
}

func (t *Touch) Cancel() {
	_ = t.resource.SendEvent(proto.TouchEventCancel, wire.NewArgWriter())
}
