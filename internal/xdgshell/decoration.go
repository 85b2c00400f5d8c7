package xdgshell

import (
	"sync"

	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/wire"
)

// DecorationMode mirrors zxdg_toplevel_decoration_v1's mode enum.
type DecorationMode uint32

const (
	DecorationClientSide DecorationMode = 1
	DecorationServerSide DecorationMode = 2
)

// DecorationPolicy decides which mode to force on a client's request of
// "no preference" (0). internal/config exposes this as a settings-driven
// choice — a feature present in the original implementation's window
// manager integration that the distilled spec dropped silently (§9,
// supplemented).
type DecorationPolicy func() DecorationMode

// BindDecorationManager installs zxdg_decoration_manager_v1's bind
// function.
func BindDecorationManager(policy DecorationPolicy) globalreg.BindFunc {
	return func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
		r, err := client.Create(proto.ZxdgDecorationManagerV1, version, id)
		if err != nil {
			return nil, err
		}
		m := &decorationManager{policy: policy}
		r.BindImplementation(m, m.dispatch, func(*objects.Resource) {})
		return r, nil
	}
}

type decorationManager struct {
	policy DecorationPolicy
}

func (m *decorationManager) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.DecorationManagerRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.DecorationManagerRequestGetToplevelDecoration:
		id, err := args.Object()
		if err != nil {
			return err
		}
		toplevelID, err := args.Object()
		if err != nil {
			return err
		}
		tRes, err := r.Client().LookupTyped(toplevelID, proto.XdgToplevel)
		if err != nil {
			return err
		}
		t, _ := tRes.Data().(*Toplevel)
		if t == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidObject, "object %d is not a toplevel", toplevelID)
		}
		dr, err := r.Client().Create(proto.ZxdgToplevelDecorationV1, 1, id)
		if err != nil {
			return err
		}
		d := &toplevelDecoration{resource: dr, toplevel: t, policy: m.policy, mode: m.policy()}
		dr.BindImplementation(d, d.dispatch, func(*objects.Resource) {})
		d.sendConfigure()
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "zxdg_decoration_manager_v1: unknown opcode %d", opcode)
	}
}

type toplevelDecoration struct {
	resource *objects.Resource
	toplevel *Toplevel
	policy   DecorationPolicy

	mu   sync.Mutex
	mode DecorationMode
}

func (d *toplevelDecoration) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.ToplevelDecorationRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.ToplevelDecorationRequestSetMode:
		v, err := args.Uint32()
		if err != nil {
			return err
		}
		requested := DecorationMode(v)
		d.mu.Lock()
		// A forced server-side policy overrides whatever the client asks
		// for (§4.6: "the server always configures SSD regardless of the
		// client's requested mode").
		if d.policy() == DecorationServerSide {
			d.mode = DecorationServerSide
		} else if requested == DecorationClientSide || requested == DecorationServerSide {
			d.mode = requested
		}
		d.mu.Unlock()
		d.sendConfigure()
		return nil
	case proto.ToplevelDecorationRequestUnsetMode:
		d.mu.Lock()
		d.mode = d.policy()
		d.mu.Unlock()
		d.sendConfigure()
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "zxdg_toplevel_decoration_v1: unknown opcode %d", opcode)
	}
}

// sendConfigure emits decoration.configure(mode) followed by a fresh
// xdg_surface.configure(new-serial), the same pairing every mode change must
// travel as (§4.6) so the client can ack the mode change atomically.
func (d *toplevelDecoration) sendConfigure() {
	d.mu.Lock()
	mode := d.mode
	d.mu.Unlock()
	_ = d.resource.SendEvent(proto.ToplevelDecorationEventConfigure, wire.NewArgWriter().Uint32(uint32(mode)))
	d.toplevel.xs.SendConfigure()
}
