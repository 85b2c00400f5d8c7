package xdgshell

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// Anchor/Gravity mirror xdg_positioner's enums; values match the protocol
// XML numbering so they can be compared directly against wire values.
type Anchor uint32

const (
	AnchorNone Anchor = iota
	AnchorTop
	AnchorBottom
	AnchorLeft
	AnchorRight
	AnchorTopLeft
	AnchorBottomLeft
	AnchorTopRight
	AnchorBottomRight
)

type Gravity uint32

const (
	GravityNone Gravity = iota
	GravityTop
	GravityBottom
	GravityLeft
	GravityRight
	GravityTopLeft
	GravityBottomLeft
	GravityTopRight
	GravityBottomRight
)

// ConstraintAdjustment is a bitmask (§4.6: slide/flip/resize on each axis).
type ConstraintAdjustment uint32

const (
	ConstraintSlideX ConstraintAdjustment = 1 << iota
	ConstraintSlideY
	ConstraintFlipX
	ConstraintFlipY
	ConstraintResizeX
	ConstraintResizeY
)

// Positioner accumulates an xdg_positioner's request sequence and resolves
// it into a popup's placement relative to its parent's window geometry
// (§4.6).
type Positioner struct {
	resource *objects.Resource

	width, height     int32
	anchorRect        surface.Rect
	anchor            Anchor
	gravity           Gravity
	constraint        ConstraintAdjustment
	offsetX, offsetY  int32
}

func newPositioner(client *objects.Client, id uint32) error {
	r, err := client.Create(proto.XdgPositioner, 1, id)
	if err != nil {
		return err
	}
	p := &Positioner{resource: r}
	r.BindImplementation(p, p.dispatch, func(*objects.Resource) {})
	return nil
}

func (p *Positioner) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.PositionerRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.PositionerRequestSetSize:
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		if w < 1 || h < 1 {
			return protoerr.New(r.ID(), protoerr.CodeInvalidDimensions, "xdg_positioner.set_size requires positive dimensions")
		}
		p.width, p.height = w, h
		return nil
	case proto.PositionerRequestSetAnchorRect:
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		if w < 1 || h < 1 {
			return protoerr.New(r.ID(), protoerr.CodeInvalidDimensions, "xdg_positioner.set_anchor_rect requires a positive rect")
		}
		p.anchorRect = surface.Rect{X: x, Y: y, Width: w, Height: h}
		return nil
	case proto.PositionerRequestSetAnchor:
		v, err := args.Uint32()
		if err != nil {
			return err
		}
		p.anchor = Anchor(v)
		return nil
	case proto.PositionerRequestSetGravity:
		v, err := args.Uint32()
		if err != nil {
			return err
		}
		p.gravity = Gravity(v)
		return nil
	case proto.PositionerRequestSetConstraintAdjustment:
		v, err := args.Uint32()
		if err != nil {
			return err
		}
		p.constraint = ConstraintAdjustment(v)
		return nil
	case proto.PositionerRequestSetOffset:
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		p.offsetX, p.offsetY = x, y
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "xdg_positioner: unknown opcode %d", opcode)
	}
}

// anchorPoint returns the point on anchorRect the popup's gravity-free
// corner attaches to.
func (p *Positioner) anchorPoint() (int32, int32) {
	x, y := p.anchorRect.X, p.anchorRect.Y
	switch p.anchor {
	case AnchorTop, AnchorTopLeft, AnchorTopRight:
		y = p.anchorRect.Y
	case AnchorBottom, AnchorBottomLeft, AnchorBottomRight:
		y = p.anchorRect.Y + p.anchorRect.Height
	default:
		y = p.anchorRect.Y + p.anchorRect.Height/2
	}
	switch p.anchor {
	case AnchorLeft, AnchorTopLeft, AnchorBottomLeft:
		x = p.anchorRect.X
	case AnchorRight, AnchorTopRight, AnchorBottomRight:
		x = p.anchorRect.X + p.anchorRect.Width
	default:
		x = p.anchorRect.X + p.anchorRect.Width/2
	}
	return x, y
}

// Resolve computes the popup's geometry relative to its parent surface's
// local coordinate space, per §4.6: anchor point plus offset, then shifted
// by gravity so the popup grows away from the anchor rect.
func (p *Positioner) Resolve() surface.Rect {
	ax, ay := p.anchorPoint()
	x, y := ax+p.offsetX, ay+p.offsetY

	switch p.gravity {
	case GravityLeft, GravityTopLeft, GravityBottomLeft:
		x -= p.width
	}
	switch p.gravity {
	case GravityTop, GravityTopLeft, GravityTopRight:
		y -= p.height
	}
	return surface.Rect{X: x, Y: y, Width: p.width, Height: p.height}
}

// Constrain applies the slide adjustment (§4.6) to fit geom within bounds;
// the flip and resize adjustment bits are ignored. Popup placement
// (newPopup, reposition) uses Resolve alone and does not call Constrain.
func (p *Positioner) Constrain(geom, bounds surface.Rect) surface.Rect {
	if p.constraint&ConstraintSlideX != 0 {
		if geom.X < bounds.X {
			geom.X = bounds.X
		}
		if right := geom.X + geom.Width; right > bounds.X+bounds.Width {
			geom.X -= right - (bounds.X + bounds.Width)
		}
	}
	if p.constraint&ConstraintSlideY != 0 {
		if geom.Y < bounds.Y {
			geom.Y = bounds.Y
		}
		if bottom := geom.Y + geom.Height; bottom > bounds.Y+bounds.Height {
			geom.Y -= bottom - (bounds.Y + bounds.Height)
		}
	}
	return geom
}
