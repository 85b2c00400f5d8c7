package surface

// Rect is an integer-coordinate axis-aligned rectangle, used for damage,
// opaque regions, input regions, and window geometry (§3.1, §4.5).
type Rect struct {
	X, Y, Width, Height int32
}

// RegionOp is one wl_region.add/subtract operation. The core only needs to
// replay these into a flattened rectangle list for the renderer snapshot,
// not to rasterize them (§1 non-goals: no pixel work in the core).
type RegionOp struct {
	Subtract bool
	Rect     Rect
}

// Region is the accumulated state of a wl_region resource before it is
// captured into a surface's opaque/input region (§4.5).
type Region struct {
	Ops []RegionOp
}

func (r *Region) Add(rect Rect)      { r.Ops = append(r.Ops, RegionOp{Rect: rect}) }
func (r *Region) Subtract(rect Rect) { r.Ops = append(r.Ops, RegionOp{Subtract: true, Rect: rect}) }

// Transform is one of the eight buffer orientations a surface may declare
// (§3.1, §4.5).
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)
