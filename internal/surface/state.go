package surface

import "github.com/wlhost/waycore/internal/objects"

// Viewport is the optional wp_viewport source-rect + destination-size pair
// (§4.5).
type Viewport struct {
	Set          bool
	SrcX, SrcY   float64
	SrcW, SrcH   float64
	DstW, DstH   int32
}

// Bundle is one of a surface's two double-buffered state halves — pending
// or applied (§3.1, §4.5).
type Bundle struct {
	Buffer    *BufferRecord
	Scale     int32 // positive, default 1
	Transform Transform

	Damage       []Rect
	OpaqueRegion []RegionOp
	InputRegion  []RegionOp

	FrameCallback *objects.Resource // at most one, consumed by the next frame signal

	Viewport Viewport
}

func newBundle() Bundle {
	return Bundle{Scale: 1, Transform: TransformNormal}
}

// clone makes an independent copy suitable for assigning pending := applied
// or applied := pending without aliasing slices.
func (b Bundle) clone() Bundle {
	out := b
	out.Damage = append([]Rect(nil), b.Damage...)
	out.OpaqueRegion = append([]RegionOp(nil), b.OpaqueRegion...)
	out.InputRegion = append([]RegionOp(nil), b.InputRegion...)
	return out
}
