// Package seat implements C7: input routing — wl_seat capability
// advertisement, per-client pointer/keyboard/touch objects, serials, focus
// tracking, and keymap distribution.
package seat

import (
	"sync"
	"sync/atomic"

	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// Capability is a bitmask matching wl_seat.capability (§4.7).
type Capability uint32

const (
	CapabilityPointer Capability = 1 << iota
	CapabilityKeyboard
	CapabilityTouch
)

var globalSerial uint32

// NextSerial returns a process-wide monotonically increasing serial,
// shared by every event that needs one (enter/leave/button/key/touch,
// §4.7 "a single counter shared across input kinds so ordering across
// devices is comparable").
func NextSerial() uint32 { return atomic.AddUint32(&globalSerial, 1) }

// Seat is one process-wide input seat advertised to every client; each
// client binds its own wl_seat resource and at most one pointer/keyboard/
// touch object from it (§4.7).
type Seat struct {
	name         string
	capabilities Capability
	keymap       Keymap

	mu       sync.Mutex
	bindings map[*objects.Resource]*seatClient

	pointerFocus  *surface.Surface
	keyboardFocus *surface.Surface
}

// Keymap is the xkb keymap distributed to every bound keyboard (§4.7,
// §6: "mmap'd xkb keymap fd").
type Keymap struct {
	Format uint32 // wl_keyboard.keymap_format, normally xkb_v1 = 1
	Fd     int
	Size   uint32
}

func New(name string, capabilities Capability, keymap Keymap) *Seat {
	return &Seat{name: name, capabilities: capabilities, keymap: keymap, bindings: make(map[*objects.Resource]*seatClient)}
}

// seatClient is the per-client bookkeeping behind one bound wl_seat: at
// most one pointer, keyboard, and touch object (§4.7 "at most one per
// client").
type seatClient struct {
	seat     *Seat
	resource *objects.Resource

	mu       sync.Mutex
	pointer  *Pointer
	keyboard *Keyboard
	touch    *Touch
}

// Bind installs wl_seat's bind function.
func (s *Seat) Bind() globalreg.BindFunc {
	return func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
		r, err := client.Create(proto.WlSeat, version, id)
		if err != nil {
			return nil, err
		}
		sc := &seatClient{seat: s, resource: r}
		s.mu.Lock()
		s.bindings[r] = sc
		s.mu.Unlock()
		r.BindImplementation(sc, sc.dispatch, sc.destroy)
		sc.sendCapabilities()
		_ = r.SendEvent(proto.SeatEventName, wire.NewArgWriter().String(s.name))
		return r, nil
	}
}

func (sc *seatClient) sendCapabilities() {
	_ = sc.resource.SendEvent(proto.SeatEventCapabilities, wire.NewArgWriter().Uint32(uint32(sc.seat.capabilities)))
}

func (sc *seatClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.SeatRequestGetPointer:
		id, err := args.Object()
		if err != nil {
			return err
		}
		if sc.seat.capabilities&CapabilityPointer == 0 {
			return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_seat.get_pointer: no pointer capability")
		}
		p, err := newPointer(sc, r.Client(), id)
		if err != nil {
			return err
		}
		sc.mu.Lock()
		sc.pointer = p
		sc.mu.Unlock()
		return nil
	case proto.SeatRequestGetKeyboard:
		id, err := args.Object()
		if err != nil {
			return err
		}
		if sc.seat.capabilities&CapabilityKeyboard == 0 {
			return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_seat.get_keyboard: no keyboard capability")
		}
		k, err := newKeyboard(sc, r.Client(), id)
		if err != nil {
			return err
		}
		sc.mu.Lock()
		sc.keyboard = k
		sc.mu.Unlock()
		return nil
	case proto.SeatRequestGetTouch:
		id, err := args.Object()
		if err != nil {
			return err
		}
		if sc.seat.capabilities&CapabilityTouch == 0 {
			return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_seat.get_touch: no touch capability")
		}
		t, err := newTouch(sc, r.Client(), id)
		if err != nil {
			return err
		}
		sc.mu.Lock()
		sc.touch = t
		sc.mu.Unlock()
		return nil
	case proto.SeatRequestRelease:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_seat: unknown opcode %d", opcode)
	}
}

func (sc *seatClient) destroy(*objects.Resource) {
	sc.seat.mu.Lock()
	delete(sc.seat.bindings, sc.resource)
	sc.seat.mu.Unlock()
}

// clientsFor returns every seatClient belonging to s's client set, used to
// fan an event out to every bound pointer/keyboard/touch of one peer
// (SetPointerFocus and SetKeyboardFocus use it for both the leave and the
// enter side).
func (s *Seat) clientsFor(c *objects.Client) []*seatClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*seatClient, 0, 1)
	for r, sc := range s.bindings {
		if r.Client() == c {
			out = append(out, sc)
		}
	}
	return out
}

// SetPointerFocus implements the pointer side of §4.7's enter/leave
// ordering: leave is sent to the old surface before enter to the new one,
// and the pressed-button set is cleared. The modifier re-send belongs to
// SetKeyboardFocus. A nil target clears focus.
func (s *Seat) SetPointerFocus(target *surface.Surface, client *objects.Client, x, y wire.Fixed) {
	s.mu.Lock()
	prev := s.pointerFocus
	s.pointerFocus = target
	s.mu.Unlock()

	if prev != nil {
		for _, sc := range s.clientsFor(prev.Resource.Client()) {
			sc.mu.Lock()
			p := sc.pointer
			sc.mu.Unlock()
			if p != nil {
				p.sendLeave(prev)
				p.ClearPressed()
			}
		}
	}
	if target != nil {
		for _, sc := range s.clientsFor(client) {
			sc.mu.Lock()
			p := sc.pointer
			sc.mu.Unlock()
			if p != nil {
				p.sendEnter(target, x, y)
			}
		}
	}
}

func (s *Seat) SetKeyboardFocus(target *surface.Surface, client *objects.Client, modsDepressed, modsLatched, modsLocked, group uint32) {
	s.mu.Lock()
	prev := s.keyboardFocus
	s.keyboardFocus = target
	s.mu.Unlock()

	if prev != nil {
		for _, sc := range s.clientsFor(prev.Resource.Client()) {
			sc.mu.Lock()
			k := sc.keyboard
			sc.mu.Unlock()
			if k != nil {
				k.sendLeave(prev)
			}
		}
	}
	if target != nil {
		for _, sc := range s.clientsFor(client) {
			sc.mu.Lock()
			k := sc.keyboard
			sc.mu.Unlock()
			if k != nil {
				k.sendEnter(target)
				k.sendModifiers(modsDepressed, modsLatched, modsLocked, group)
			}
		}
	}
}

func (s *Seat) PointerFocus() *surface.Surface  { s.mu.Lock(); defer s.mu.Unlock(); return s.pointerFocus }
func (s *Seat) KeyboardFocus() *surface.Surface { s.mu.Lock(); defer s.mu.Unlock(); return s.keyboardFocus }
