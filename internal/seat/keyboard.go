package seat

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// KeyState mirrors wl_keyboard.key_state.
type KeyState uint32

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
)

// Keyboard is one client's bound wl_keyboard object.
type Keyboard struct {
	sc       *seatClient
	resource *objects.Resource
}

func newKeyboard(sc *seatClient, client *objects.Client, id uint32) (*Keyboard, error) {
	r, err := client.Create(proto.WlKeyboard, 7, id)
	if err != nil {
		return nil, err
	}
	k := &Keyboard{sc: sc, resource: r}
	r.BindImplementation(k, k.dispatch, k.destroy)
	k.sendKeymap()
	_ = r.SendEvent(proto.KeyboardEventRepeatInfo, wire.NewArgWriter().Int32(25).Int32(600))
	return k, nil
}

// sendKeymap distributes the process-wide xkb keymap by fd (§4.7, §6:
// "mmap'd xkb keymap fd").
func (k *Keyboard) sendKeymap() {
	km := k.sc.seat.keymap
	if km.Fd < 0 {
		return
	}
	_ = k.resource.SendEvent(proto.KeyboardEventKeymap, wire.NewArgWriter().
		Uint32(km.Format).Fd(km.Fd).Uint32(km.Size))
}

func (k *Keyboard) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.KeyboardRequestRelease:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_keyboard: unknown opcode %d", opcode)
	}
}

func (k *Keyboard) destroy(*objects.Resource) {}

func (k *Keyboard) sendEnter(target *surface.Surface) {
	serial := NextSerial()
	_ = k.resource.SendEvent(proto.KeyboardEventEnter, wire.NewArgWriter().
		Uint32(serial).Object(target.Resource.ID()).Array(nil))
}

func (k *Keyboard) sendLeave(target *surface.Surface) {
	serial := NextSerial()
	_ = k.resource.SendEvent(proto.KeyboardEventLeave, wire.NewArgWriter().Uint32(serial).Object(target.Resource.ID()))
}

func (k *Keyboard) sendModifiers(depressed, latched, locked, group uint32) {
	serial := NextSerial()
	_ = k.resource.SendEvent(proto.KeyboardEventModifiers, wire.NewArgWriter().
		Uint32(serial).Uint32(depressed).Uint32(latched).Uint32(locked).Uint32(group))
}

// Key sends wl_keyboard.key for one physical key transition (§4.7).
func (k *Keyboard) Key(timeMs uint32, key uint32, state KeyState) {
	serial := NextSerial()
	_ = k.resource.SendEvent(proto.KeyboardEventKey, wire.NewArgWriter().
		Uint32(serial).Uint32(timeMs).Uint32(key).Uint32(uint32(state)))
}

// Modifiers re-sends the current modifier mask, called directly by
// internal/compositor outside of a focus change (e.g. a bare modifier-only
// key transition).
func (k *Keyboard) Modifiers(depressed, latched, locked, group uint32) {
	k.sendModifiers(depressed, latched, locked, group)
}
