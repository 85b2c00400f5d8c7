package seat

import (
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

func newTestClient() (*objects.Client, *recordingSender) {
	s := &recordingSender{}
	return objects.NewClient(s, zerolog.Nop()), s
}

func newTestSurface(t *testing.T, c *objects.Client, id uint32) *surface.Surface {
	t.Helper()
	r, err := c.Create(proto.WlSurface, 1, id)
	require.NoError(t, err)
	r.BindImplementation(nil, func(*objects.Resource, uint16, *wire.ArgReader) error { return nil }, nil)
	return surface.New(r, frame.NewScheduler(), surface.Hooks{})
}

func bindSeat(t *testing.T, s *Seat, c *objects.Client, id uint32) *objects.Resource {
	t.Helper()
	r, err := s.Bind()(c, proto.WlSeat.Version, id)
	require.NoError(t, err)
	return r
}

func TestBindSendsCapabilitiesAndName(t *testing.T) {
	s := New("seat0", CapabilityPointer|CapabilityKeyboard, Keymap{Format: 1, Fd: -1})
	c, sender := newTestClient()
	bindSeat(t, s, c, 5)
	require.Len(t, sender.sent, 2) // capabilities then name
}

func TestGetPointerRejectedWithoutCapability(t *testing.T) {
	s := New("seat0", CapabilityKeyboard, Keymap{Fd: -1})
	c, _ := newTestClient()
	r := bindSeat(t, s, c, 5)

	w := wire.NewArgWriter().Object(6)
	err := c.Dispatch(w.Build(r.ID(), proto.SeatRequestGetPointer))
	require.Error(t, err)
}

func TestGetPointerSucceedsWithCapability(t *testing.T) {
	s := New("seat0", CapabilityPointer, Keymap{Fd: -1})
	c, _ := newTestClient()
	r := bindSeat(t, s, c, 5)

	w := wire.NewArgWriter().Object(6)
	err := c.Dispatch(w.Build(r.ID(), proto.SeatRequestGetPointer))
	require.NoError(t, err)
	require.NotNil(t, c.Lookup(6))
}

func TestSetPointerFocusSendsLeaveBeforeEnter(t *testing.T) {
	s := New("seat0", CapabilityPointer, Keymap{Fd: -1})
	c, sender := newTestClient()
	r := bindSeat(t, s, c, 5)
	w := wire.NewArgWriter().Object(6)
	require.NoError(t, c.Dispatch(w.Build(r.ID(), proto.SeatRequestGetPointer)))

	surf1 := newTestSurface(t, c, 10)
	surf2 := newTestSurface(t, c, 11)

	before := len(sender.sent)
	s.SetPointerFocus(surf1, c, 0, 0)
	require.Greater(t, len(sender.sent), before) // enter event

	before = len(sender.sent)
	s.SetPointerFocus(surf2, c, 0, 0)
	// leave for surf1 then enter for surf2: at least 2 new events
	require.GreaterOrEqual(t, len(sender.sent)-before, 2)
	require.Equal(t, proto.PointerEventLeave, sender.sent[before].Opcode)
	require.Equal(t, proto.PointerEventEnter, sender.sent[before+1].Opcode)

	require.Equal(t, surf2, s.PointerFocus())
}

func TestSetPointerFocusClearsPressedButtons(t *testing.T) {
	s := New("seat0", CapabilityPointer, Keymap{Fd: -1})
	c, sender := newTestClient()
	r := bindSeat(t, s, c, 5)
	w := wire.NewArgWriter().Object(6)
	require.NoError(t, c.Dispatch(w.Build(r.ID(), proto.SeatRequestGetPointer)))
	p, _ := c.Lookup(6).Data().(*Pointer)
	require.NotNil(t, p)

	surf1 := newTestSurface(t, c, 10)
	surf2 := newTestSurface(t, c, 11)

	s.SetPointerFocus(surf1, c, 0, 0)
	p.Button(1, 272, ButtonPressed)

	s.SetPointerFocus(surf2, c, 0, 0)

	before := len(sender.sent)
	p.Button(2, 272, ButtonPressed) // focus moved to surf2; 272 must not look still-down
	require.Equal(t, 2, len(sender.sent)-before)
}

func TestSetKeyboardFocusResendsModifiers(t *testing.T) {
	s := New("seat0", CapabilityKeyboard, Keymap{Format: 1, Fd: -1})
	c, sender := newTestClient()
	r := bindSeat(t, s, c, 5)
	w := wire.NewArgWriter().Object(6)
	require.NoError(t, c.Dispatch(w.Build(r.ID(), proto.SeatRequestGetKeyboard)))

	surf := newTestSurface(t, c, 10)
	before := len(sender.sent)
	s.SetKeyboardFocus(surf, c, 1, 2, 3, 0)
	require.Greater(t, len(sender.sent), before)
	require.Equal(t, proto.KeyboardEventModifiers, sender.sent[len(sender.sent)-1].Opcode)
	require.Equal(t, surf, s.KeyboardFocus())
}

func TestNextSerialIsMonotonic(t *testing.T) {
	a := NextSerial()
	b := NextSerial()
	require.Less(t, a, b)
}
