package datadevice

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
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

func newTestClient() (*objects.Client, *recordingSender) {
	s := &recordingSender{}
	return objects.NewClient(s, zerolog.Nop()), s
}

func TestCreateDataSourceAccumulatesMimeTypes(t *testing.T) {
	m := NewManager()
	c, _ := newTestClient()
	mgrID := c.AllocateServerID()
	mgrRes, err := m.Bind()(c, proto.WlDataDeviceManager.Version, mgrID)
	require.NoError(t, err)

	srcID := c.AllocateServerID()
	err = c.Dispatch(wire.NewArgWriter().Object(srcID).Build(mgrRes.ID(), proto.DataDeviceManagerRequestCreateDataSource))
	require.NoError(t, err)

	srcRes := c.Lookup(srcID)
	require.NotNil(t, srcRes)

	err = c.Dispatch(wire.NewArgWriter().String("text/plain").Build(srcRes.ID(), 0 /* offer */))
	require.NoError(t, err)

	src, _ := srcRes.Data().(*source)
	require.NotNil(t, src)
	require.Equal(t, []string{"text/plain"}, src.mimeTypes)
}

func TestGetDataDeviceImmediatelyOffersExistingSelection(t *testing.T) {
	m := NewManager()
	c, sender := newTestClient()
	mgrID := c.AllocateServerID()
	mgrRes, err := m.Bind()(c, proto.WlDataDeviceManager.Version, mgrID)
	require.NoError(t, err)

	srcID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(srcID).
		Build(mgrRes.ID(), proto.DataDeviceManagerRequestCreateDataSource)))
	srcRes := c.Lookup(srcID)
	src, _ := srcRes.Data().(*source)
	m.setSelection(src)

	before := len(sender.sent)
	deviceID := c.AllocateServerID()
	err = c.Dispatch(wire.NewArgWriter().Object(deviceID).Object(1 /* seat, unused */).
		Build(mgrRes.ID(), proto.DataDeviceManagerRequestGetDataDevice))
	require.NoError(t, err)
	require.Greater(t, len(sender.sent), before) // data_offer + selection events fired immediately
}

func TestSetSelectionBroadcastsToEveryDevice(t *testing.T) {
	m := NewManager()
	c, sender := newTestClient()
	mgrID := c.AllocateServerID()
	mgrRes, err := m.Bind()(c, proto.WlDataDeviceManager.Version, mgrID)
	require.NoError(t, err)

	deviceID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(deviceID).Object(1).
		Build(mgrRes.ID(), proto.DataDeviceManagerRequestGetDataDevice)))
	deviceRes := c.Lookup(deviceID)

	srcID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(srcID).
		Build(mgrRes.ID(), proto.DataDeviceManagerRequestCreateDataSource)))
	srcRes := c.Lookup(srcID)

	before := len(sender.sent)
	err = c.Dispatch(wire.NewArgWriter().Object(srcID).Uint32(1 /* serial */).
		Build(deviceRes.ID(), proto.DataDeviceRequestSetSelection))
	require.NoError(t, err)
	require.Greater(t, len(sender.sent), before)
	_ = srcRes
}

func TestDataOfferAcceptWithNullableMimeType(t *testing.T) {
	m := NewManager()
	c, _ := newTestClient()
	mgrID := c.AllocateServerID()
	mgrRes, err := m.Bind()(c, proto.WlDataDeviceManager.Version, mgrID)
	require.NoError(t, err)

	srcID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(srcID).
		Build(mgrRes.ID(), proto.DataDeviceManagerRequestCreateDataSource)))
	srcRes := c.Lookup(srcID)
	src, _ := srcRes.Data().(*source)
	m.setSelection(src)

	deviceID := c.AllocateServerID()
	require.NoError(t, c.Dispatch(wire.NewArgWriter().Object(deviceID).Object(1).
		Build(mgrRes.ID(), proto.DataDeviceManagerRequestGetDataDevice)))

	// the offer object allocated during the immediate broadcast is the next
	// server id after deviceID.
	offerID := deviceID + 1
	offerRes := c.Lookup(offerID)
	require.NotNil(t, offerRes)

	// accept(serial) with no mime_type argument — must not trip the
	// trailing-bytes check.
	err = c.Dispatch(wire.NewArgWriter().Uint32(7).Build(offerRes.ID(), 0 /* accept */))
	require.NoError(t, err)
}
