package xdgshell

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// Popup is a transient, positioner-placed surface anchored to a parent
// xdg_surface — menus, tooltips, context menus (§4.6).
type Popup struct {
	xs       *XdgSurface
	resource *objects.Resource
	parent   *XdgSurface
	pos      *Positioner

	mu      sync.Mutex
	grabbed bool
	geom    surface.Rect
}

func newPopup(xs *XdgSurface, client *objects.Client, id uint32, parent *XdgSurface, pos *Positioner) error {
	if err := xs.Surface.SetRole(surface.RolePopup, nil); err != nil {
		return protoerr.New(xs.resource.ID(), protoerr.CodeRole, "%s", err)
	}
	r, err := client.Create(proto.XdgPopup, 4, id)
	if err != nil {
		return err
	}
	p := &Popup{xs: xs, resource: r, parent: parent, pos: pos, geom: pos.Resolve()}
	xs.Surface.SetRole(surface.RolePopup, p)
	xs.setRoleResource(r)
	r.BindImplementation(p, p.dispatch, p.destroy)

	if parent != nil {
		parent.Surface.SetPosition(p.geom.X, p.geom.Y)
	}
	p.sendConfigure()
	return nil
}

func (p *Popup) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.PopupRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.PopupRequestGrab:
		if _, err := args.Object(); err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil {
			return err
		}
		p.mu.Lock()
		p.grabbed = true
		p.mu.Unlock()
		return nil
	case proto.PopupRequestReposition:
		posID, err := args.Object()
		if err != nil {
			return err
		}
		token, err := args.Uint32()
		if err != nil {
			return err
		}
		posRes, err := r.Client().LookupTyped(posID, proto.XdgPositioner)
		if err != nil {
			return err
		}
		newPos, _ := posRes.Data().(*Positioner)
		if newPos == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidObject, "object %d is not a positioner", posID)
		}
		p.mu.Lock()
		p.pos = newPos
		p.geom = newPos.Resolve()
		p.mu.Unlock()
		_ = r.SendEvent(proto.PopupEventRepositioned, wire.NewArgWriter().Uint32(token))
		p.sendConfigure()
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "xdg_popup: unknown opcode %d", opcode)
	}
}

func (p *Popup) destroy(*objects.Resource) {
	// popup_done notifies the client its transient surface is no longer
	// mapped — harmless if destroy was client-initiated (§4.6).
	_ = p.resource.SendEvent(proto.PopupEventPopupDone, wire.NewArgWriter())
}

func (p *Popup) sendConfigure() {
	p.mu.Lock()
	geom := p.geom
	p.mu.Unlock()
	_ = p.resource.SendEvent(proto.PopupEventConfigure, wire.NewArgWriter().
		Int32(geom.X).Int32(geom.Y).Int32(geom.Width).Int32(geom.Height))
	p.xs.SendConfigure()
}

// Dismiss destroys the popup's resource server-side; its destructor sends
// popup_done. Nothing in internal/seat calls it.
func (p *Popup) Dismiss() {
	p.resource.Client().Destroy(p.resource)
}
