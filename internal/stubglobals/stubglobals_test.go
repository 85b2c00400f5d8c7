package stubglobals

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/wire"
)

type recordingSender struct {
	sent []wire.Message
}

func (s *recordingSender) WriteMessage(m wire.Message) error {
	s.sent = append(s.sent, m)
	return nil
}

func TestRegisterAllAdvertisesEveryStub(t *testing.T) {
	reg := globalreg.New()
	RegisterAll(reg)

	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	regID := c.AllocateServerID()
	regRes, err := c.Create(proto.WlRegistry, 1, regID)
	require.NoError(t, err)
	regRes.BindImplementation(nil, func(*objects.Resource, uint16, *wire.ArgReader) error { return nil }, nil)

	reg.Announce(regRes)
	require.Equal(t, 8, len(sender.sent))
}

func TestStubAcceptsAnyRequestWithoutEvents(t *testing.T) {
	reg := globalreg.New()
	RegisterAll(reg)

	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	id := c.AllocateServerID()
	res, err := reg.Bind(c, 1, proto.GtkShell1.Version, id)
	require.NoError(t, err)

	err = c.Dispatch(wire.NewArgWriter().Uint32(1).String("anything").Build(res.ID(), 7))
	require.NoError(t, err)
	require.Empty(t, sender.sent)
}

func TestStubDestroyOpcodeReclaimsResource(t *testing.T) {
	reg := globalreg.New()
	RegisterAll(reg)

	sender := &recordingSender{}
	c := objects.NewClient(sender, zerolog.Nop())
	id := c.AllocateServerID()
	res, err := reg.Bind(c, 1, proto.GtkShell1.Version, id)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(wire.NewArgWriter().Build(res.ID(), 0)))
	require.Nil(t, c.Lookup(id))
}
