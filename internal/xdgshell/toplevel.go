package xdgshell

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// State is one of xdg_toplevel's window-state flags (§4.6).
type State uint32

const (
	StateMaximized State = iota + 1
	StateFullscreen
	StateResizing
	StateActivated
	StateTiledLeft
	StateTiledRight
	StateTiledTop
	StateTiledBottom
)

// Toplevel is an application window: title/app_id metadata, min/max size
// hints, and the maximized/fullscreen/activated state set the compositor
// negotiates via configure (§4.6).
type Toplevel struct {
	xs       *XdgSurface
	resource *objects.Resource

	mu            sync.Mutex
	title, appID  string
	minW, minH    int32
	maxW, maxH    int32
	states        map[State]struct{}
	parent        *Toplevel
	configured    bool
}

func newToplevel(xs *XdgSurface, client *objects.Client, id uint32) error {
	if err := xs.Surface.SetRole(surface.RoleToplevel, nil); err != nil {
		return protoerr.New(xs.resource.ID(), protoerr.CodeRole, "%s", err)
	}
	r, err := client.Create(proto.XdgToplevel, 4, id)
	if err != nil {
		return err
	}
	t := &Toplevel{xs: xs, resource: r, states: make(map[State]struct{})}
	xs.Surface.SetRole(surface.RoleToplevel, t)
	xs.setRoleResource(r)
	r.BindImplementation(t, t.dispatch, t.destroy)

	// Initial handshake ordering (§4.6 supplemented from the original
	// implementation): configure_bounds, wm_capabilities, then the first
	// zero-size configure inviting the client to pick its own size.
	// configure_bounds is always sent once both sides speak v4+ (this
	// binding always does, per client.Create above) even when no real
	// bound is known — (0,0) signals "unbounded" rather than the event
	// being conditionally skipped.
	_ = r.SendEvent(proto.ToplevelEventConfigureBounds, wire.NewArgWriter().Int32(0).Int32(0))
	_ = r.SendEvent(proto.ToplevelEventWmCapabilities, wire.NewArgWriter().Array(nil))
	t.sendConfigure()
	return nil
}

func (t *Toplevel) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.ToplevelRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.ToplevelRequestSetParent:
		parentID, err := args.Object()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.parent = nil
		t.mu.Unlock()
		if parentID != 0 {
			parentRes, err := r.Client().LookupTyped(parentID, proto.XdgToplevel)
			if err != nil {
				return err
			}
			if p, ok := parentRes.Data().(*Toplevel); ok {
				t.mu.Lock()
				t.parent = p
				t.mu.Unlock()
			}
		}
		return nil
	case proto.ToplevelRequestSetTitle:
		s, err := args.String()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.title = s
		t.mu.Unlock()
		return nil
	case proto.ToplevelRequestSetAppID:
		s, err := args.String()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.appID = s
		t.mu.Unlock()
		return nil
	case proto.ToplevelRequestShowWindowMenu:
		if _, err := args.Object(); err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		_, err := args.Int32()
		return err
	case proto.ToplevelRequestMove:
		if _, err := args.Object(); err != nil {
			return err
		}
		_, err := args.Uint32()
		return err
	case proto.ToplevelRequestResize:
		if _, err := args.Object(); err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil {
			return err
		}
		_, err := args.Uint32()
		return err
	case proto.ToplevelRequestSetMaxSize:
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.maxW, t.maxH = w, h
		t.mu.Unlock()
		return nil
	case proto.ToplevelRequestSetMinSize:
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.minW, t.minH = w, h
		t.mu.Unlock()
		return nil
	case proto.ToplevelRequestSetMaximized:
		t.setState(StateMaximized, true)
		return nil
	case proto.ToplevelRequestUnsetMaximized:
		t.setState(StateMaximized, false)
		return nil
	case proto.ToplevelRequestSetFullscreen:
		if _, err := args.Object(); err != nil {
			return err
		}
		t.setState(StateFullscreen, true)
		return nil
	case proto.ToplevelRequestUnsetFullscreen:
		t.setState(StateFullscreen, false)
		return nil
	case proto.ToplevelRequestSetMinimized:
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "xdg_toplevel: unknown opcode %d", opcode)
	}
}

func (t *Toplevel) destroy(*objects.Resource) {}

func (t *Toplevel) setState(s State, on bool) {
	t.mu.Lock()
	if on {
		t.states[s] = struct{}{}
	} else {
		delete(t.states, s)
	}
	t.mu.Unlock()
	t.sendConfigure()
}

// sendConfigure emits toplevel.configure (current size hint, 0x0 meaning
// "client's choice") followed by xdg_surface.configure's serial, matching
// the pair every configure change must travel as (§4.6).
func (t *Toplevel) sendConfigure() {
	t.mu.Lock()
	states := make([]State, 0, len(t.states))
	for s := range t.states {
		states = append(states, s)
	}
	t.mu.Unlock()

	buf := make([]byte, 0, 4*len(states))
	for _, s := range states {
		var b [4]byte
		b[0] = byte(s)
		buf = append(buf, b[:]...)
	}
	_ = t.resource.SendEvent(proto.ToplevelEventConfigure, wire.NewArgWriter().Int32(0).Int32(0).Array(buf))
	t.xs.SendConfigure()
}

// Close sends xdg_toplevel.close, requesting the client destroy the window
// (§4.6; e.g. an external WM action or compositor shutdown).
func (t *Toplevel) Close() {
	_ = t.resource.SendEvent(proto.ToplevelEventClose, wire.NewArgWriter())
}

func (t *Toplevel) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

func (t *Toplevel) AppID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appID
}
