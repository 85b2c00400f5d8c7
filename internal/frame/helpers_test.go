package frame

import (
	"github.com/rs/zerolog"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/wire"
)

var testIface = proto.WlCallback

func zeroLogger() zerolog.Logger { return zerolog.Nop() }

type recordingSender struct {
	sent []wire.Message
}

func (s *recordingSender) WriteMessage(m wire.Message) error {
	s.sent = append(s.sent, m)
	return nil
}
