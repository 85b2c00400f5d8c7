package seat

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// ButtonState mirrors wl_pointer.button_state.
type ButtonState uint32

const (
	ButtonReleased ButtonState = 0
	ButtonPressed  ButtonState = 1
)

// Pointer is one client's bound wl_pointer object.
type Pointer struct {
	sc       *seatClient
	resource *objects.Resource

	mu      sync.Mutex
	pressed map[uint32]struct{} // de-dup: a button already down cannot be pressed again (§4.7)
}

func newPointer(sc *seatClient, client *objects.Client, id uint32) (*Pointer, error) {
	r, err := client.Create(proto.WlPointer, 7, id)
	if err != nil {
		return nil, err
	}
	p := &Pointer{sc: sc, resource: r, pressed: make(map[uint32]struct{})}
	r.BindImplementation(p, p.dispatch, p.destroy)
	return p, nil
}

func (p *Pointer) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.PointerRequestSetCursor:
		if _, err := args.Uint32(); err != nil { // serial
			return err
		}
		surfaceID, err := args.Object()
		if err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil { // hotspot_x
			return err
		}
		if _, err := args.Int32(); err != nil { // hotspot_y
			return err
		}
		_ = surfaceID // cursor surface role assignment happens in the compositor, which owns the surface table
		return nil
	case proto.PointerRequestRelease:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_pointer: unknown opcode %d", opcode)
	}
}

func (p *Pointer) destroy(*objects.Resource) {}

func (p *Pointer) sendEnter(target *surface.Surface, x, y wire.Fixed) {
	serial := NextSerial()
	_ = p.resource.SendEvent(proto.PointerEventEnter, wire.NewArgWriter().
		Uint32(serial).Object(target.Resource.ID()).Fixed(x).Fixed(y))
}

func (p *Pointer) sendLeave(target *surface.Surface) {
	serial := NextSerial()
	_ = p.resource.SendEvent(proto.PointerEventLeave, wire.NewArgWriter().Uint32(serial).Object(target.Resource.ID()))
}

// ClearPressed empties the button de-dup bitmap. Called when pointer focus
// leaves a surface (§4.7): buttons tracked against the old focus must not
// suppress presses reported against whatever surface gains focus next.
func (p *Pointer) ClearPressed() {
	p.mu.Lock()
	for b := range p.pressed {
		delete(p.pressed, b)
	}
	p.mu.Unlock()
}

// Motion sends wl_pointer.motion followed by a frame event (§4.7: every
// pointer event group is terminated with wl_pointer.frame since v5).
func (p *Pointer) Motion(timeMs uint32, x, y wire.Fixed) {
	_ = p.resource.SendEvent(proto.PointerEventMotion, wire.NewArgWriter().Uint32(timeMs).Fixed(x).Fixed(y))
	p.sendFrame()
}

// Button applies the press/release de-dup bitmap and sends button+frame
// (§4.7: a second press of an already-down button, or a release of a
// button that isn't down, is dropped rather than forwarded).
func (p *Pointer) Button(timeMs uint32, button uint32, state ButtonState) {
	p.mu.Lock()
	_, down := p.pressed[button]
	switch {
	case state == ButtonPressed && down:
		p.mu.Unlock()
		return
	case state == ButtonReleased && !down:
		p.mu.Unlock()
		return
	case state == ButtonPressed:
		p.pressed[button] = struct{}{}
	default:
		delete(p.pressed, button)
	}
	p.mu.Unlock()

	serial := NextSerial()
	_ = p.resource.SendEvent(proto.PointerEventButton, wire.NewArgWriter().
		Uint32(serial).Uint32(timeMs).Uint32(button).Uint32(uint32(state)))
	p.sendFrame()
}

func (p *Pointer) Axis(timeMs uint32, axis uint32, value wire.Fixed) {
	_ = p.resource.SendEvent(proto.PointerEventAxis, wire.NewArgWriter().Uint32(timeMs).Uint32(axis).Fixed(value))
	p.sendFrame()
}

func (p *Pointer) sendFrame() {
	_ = p.resource.SendEvent(proto.PointerEventFrame, wire.NewArgWriter())
}
