// Package surface implements C5: surface objects, pending/applied
// double-buffered state, damage accumulation, commit, the subsurface
// tree, and frame-callback arming.
package surface

import (
	"fmt"
	"sync"

	"github.com/wlhost/waycore/internal/frame"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/protoerr"
)

// Role is the purpose assigned to a surface; a surface may hold at most
// one (§4.6: "A surface may have at most one role; assigning a second is a
// ROLE error").
type Role int

const (
	RoleNone Role = iota
	RoleToplevel
	RolePopup
	RoleSubsurface
	RoleCursor
)

// Hooks are the renderer-facing callbacks a surface invokes around commit.
// internal/compositor supplies the real implementations (bridging to
// internal/renderer); tests can supply no-ops.
type Hooks struct {
	// Committed is called after a commit has been fully applied (§4.5 step
	// 5, "hand the surface to the external renderer's committed hook").
	Committed func(s *Surface)
	// BufferReplaced is called when the applied buffer changes away from a
	// non-nil prior buffer. The default (nil) releases synchronously;
	// internal/compositor overrides it to wait for the renderer's retire
	// acknowledgement first (§5).
	BufferReplaced func(old *BufferRecord)
}

// Surface is a client drawing target with double-buffered state (§3.1).
type Surface struct {
	mu sync.Mutex

	Resource *objects.Resource
	scheduler *frame.Scheduler
	hooks     Hooks

	pending Bundle
	applied Bundle
	cached  *Bundle // subsurface sync-mode staging, see commitSelf/applyCachedIfSync

	role       Role
	roleObject any // *xdgshell.Toplevel, *xdgshell.Popup, etc; opaque here

	parent   *Surface
	offsetX  int32
	offsetY  int32
	syncMode bool // subsurfaces default to sync (§4.5)
	children []*Surface

	armedCallback *objects.Resource
	destroyed     bool
}

// New creates a surface with fresh pending/applied bundles (scale 1,
// transform normal, no buffer) and registers it with the frame scheduler.
func New(resource *objects.Resource, scheduler *frame.Scheduler, hooks Hooks) *Surface {
	s := &Surface{
		Resource:  resource,
		scheduler: scheduler,
		hooks:     hooks,
		pending:   newBundle(),
		applied:   newBundle(),
		syncMode:  true,
	}
	scheduler.Register(s)
	return s
}

// Role/SetRole implement §4.6's at-most-one-role invariant: SetRole
// returns an error when the surface already has a different role, and
// callers in internal/xdgshell and internal/compositor rely on that error.
// Re-assigning the same role replaces the role object.
func (s *Surface) Role() Role        { return s.role }
func (s *Surface) RoleObject() any   { return s.roleObject }
func (s *Surface) SetRole(r Role, obj any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.role != RoleNone && s.role != r {
		return fmt.Errorf("surface: already has role %v, cannot assign %v", s.role, r)
	}
	s.role = r
	s.roleObject = obj
	return nil
}

// Attach sets the pending buffer reference (wl_surface.attach, §4.5).
func (s *Surface) Attach(buf *BufferRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Buffer = buf
	s.syncBufferRefsLocked()
}

func (s *Surface) Damage(r Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Damage = append(s.pending.Damage, r)
}

func (s *Surface) SetOpaqueRegion(ops []RegionOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.OpaqueRegion = ops
}

func (s *Surface) SetInputRegion(ops []RegionOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.InputRegion = ops
}

// SetBufferScale clamps values below 1 up to 1 on commit, not at set-time
// (§4.5: "<1 is clamped on commit").
func (s *Surface) SetBufferScale(scale int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Scale = scale
}

func (s *Surface) SetBufferTransform(t Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Transform = t
}

func (s *Surface) SetViewport(vp Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Viewport = vp
}

// RequestFrame implements "at most one pending" (§4.8): a second request
// before the first fires replaces it, destroying the replaced callback
// without firing it.
func (s *Surface) RequestFrame(cb *objects.Resource) {
	s.mu.Lock()
	old := s.pending.FrameCallback
	s.pending.FrameCallback = cb
	s.mu.Unlock()
	if old != nil {
		old.Client().Destroy(old)
	}
}

// SetSubsurfaceSync implements wl_subsurface's set_sync (true) and
// set_desync (false) mode requests (§4.5).
func (s *Surface) SetSubsurfaceSync(sync bool) {
	s.mu.Lock()
	s.syncMode = sync
	s.mu.Unlock()
}

func (s *Surface) IsSubsurfaceSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncMode
}

// SetParent wires a subsurface's non-owning parent link and offset
// (§3.1, §4.5).
func (s *Surface) SetParent(parent *Surface, x, y int32) {
	s.mu.Lock()
	s.parent = parent
	s.offsetX, s.offsetY = x, y
	s.mu.Unlock()
	parent.mu.Lock()
	parent.children = append(parent.children, s)
	parent.mu.Unlock()
}

func (s *Surface) SetPosition(x, y int32) {
	s.mu.Lock()
	s.offsetX, s.offsetY = x, y
	s.mu.Unlock()
}

func (s *Surface) Parent() *Surface { return s.parent }

// PlaceAbove/PlaceBelow reorder s relative to sibling within their shared
// parent's child list (§4.5). Insertion order is the initial stack order.
func (s *Surface) PlaceAbove(sibling *Surface) error { return s.restack(sibling, 1) }
func (s *Surface) PlaceBelow(sibling *Surface) error { return s.restack(sibling, 0) }

func (s *Surface) restack(sibling *Surface, afterOffset int) error {
	if s.parent == nil || s.parent != sibling.parent {
		return fmt.Errorf("surface: place_above/below requires a shared parent")
	}
	p := s.parent
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := -1
	siblingIdx := -1
	for i, c := range p.children {
		if c == s {
			idx = i
		}
		if c == sibling {
			siblingIdx = i
		}
	}
	if idx < 0 || siblingIdx < 0 {
		return fmt.Errorf("surface: stacking operands not children of the same parent")
	}
	children := make([]*Surface, 0, len(p.children)-1)
	for i, c := range p.children {
		if i != idx {
			children = append(children, c)
		}
	}
	insertAt := 0
	for i, c := range children {
		if c == sibling {
			insertAt = i + afterOffset
			break
		}
	}
	out := make([]*Surface, 0, len(children)+1)
	out = append(out, children[:insertAt]...)
	out = append(out, s)
	out = append(out, children[insertAt:]...)
	p.children = out
	return nil
}

// Dimensions derives the applied surface size from its buffer and scale
// (§3.1: "rounded, ≥ 1 when a buffer is attached").
func (s *Surface) Dimensions() (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied.Buffer == nil {
		return 0, 0
	}
	scale := s.applied.Scale
	if scale < 1 {
		scale = 1
	}
	w := (s.applied.Buffer.Width + scale - 1) / scale
	h := (s.applied.Buffer.Height + scale - 1) / scale
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Applied exposes a snapshot of the applied bundle for the renderer
// collaborator bridge (internal/compositor); callers must not mutate the
// slices in place.
func (s *Surface) Applied() Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Commit implements wl_surface.commit (§4.5). For a synced subsurface, the
// pending state is staged into cached rather than applied; applying it is
// deferred to the nearest ancestor's own commit (or this surface's own
// commit once desynced). A surface with no role must not be committed with
// a buffer attached (§4.6); that's a protocol error, not a silent no-op.
func (s *Surface) Commit() error {
	s.mu.Lock()
	if s.role == RoleNone && s.pending.Buffer != nil {
		s.mu.Unlock()
		return protoerr.New(s.Resource.ID(), protoerr.CodeRole, "wl_surface.commit with a buffer attached but no role assigned")
	}
	if s.role == RoleSubsurface && s.syncMode {
		cached := s.pending.clone()
		s.cached = &cached
		s.resetPendingLocked()
		s.mu.Unlock()
		return nil
	}
	src := s.pending.clone()
	s.resetPendingLocked()
	s.mu.Unlock()

	s.commitSelf(src)

	s.mu.Lock()
	children := append([]*Surface(nil), s.children...)
	s.mu.Unlock()
	for _, c := range children {
		c.applyCachedIfSync()
	}
	return nil
}

// applyCachedIfSync promotes a synced subsurface's cached commit into
// applied, recursing into its own children so a chain of nested
// subsurfaces all settles together (§4.5).
func (s *Surface) applyCachedIfSync() {
	s.mu.Lock()
	if s.role != RoleSubsurface || !s.syncMode || s.cached == nil {
		s.mu.Unlock()
		return
	}
	src := *s.cached
	s.cached = nil
	s.mu.Unlock()

	s.commitSelf(src)

	s.mu.Lock()
	children := append([]*Surface(nil), s.children...)
	s.mu.Unlock()
	for _, c := range children {
		c.applyCachedIfSync()
	}
}

// resetPendingLocked clears pending damage/region lists after they've been
// captured into src (§4.5 step 4); buffer/scale/transform/viewport persist
// until the client changes them again, matching real client behavior of
// not re-attaching on every commit.
func (s *Surface) resetPendingLocked() {
	s.pending.Damage = nil
	s.pending.OpaqueRegion = nil
	s.pending.InputRegion = nil
	s.pending.FrameCallback = nil
}

// commitSelf is the atomic promote step (§4.5 steps 1-5) given a captured
// source bundle (pending for a normal commit, cached for a deferred
// subsurface commit).
func (s *Surface) commitSelf(src Bundle) {
	s.mu.Lock()
	oldBuffer := s.applied.Buffer
	if src.Scale < 1 {
		src.Scale = 1
	}
	s.applied = src
	if s.applied.Buffer != nil {
		s.applied.Buffer.reapplied()
	}
	if src.FrameCallback != nil {
		s.armedCallback = src.FrameCallback
	}
	bufferChanged := oldBuffer != s.applied.Buffer
	s.mu.Unlock()

	if bufferChanged && oldBuffer != nil {
		if s.hooks.BufferReplaced != nil {
			s.hooks.BufferReplaced(oldBuffer)
		} else {
			oldBuffer.Release()
		}
	}
	s.syncBufferRefs()

	if s.hooks.Committed != nil {
		s.hooks.Committed(s)
	}
}

func (s *Surface) syncBufferRefs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncBufferRefsLocked()
}

// syncBufferRefsLocked recomputes which BufferRecords this surface
// currently references (pending ∪ applied) so the buffer-reference sweep
// (§4.4) knows exactly which surfaces to notify on destroy.
func (s *Surface) syncBufferRefsLocked() {
	want := map[*BufferRecord]struct{}{}
	if s.pending.Buffer != nil {
		want[s.pending.Buffer] = struct{}{}
	}
	if s.applied.Buffer != nil {
		want[s.applied.Buffer] = struct{}{}
	}
	for b := range want {
		b.addRef(s)
	}
}

// dropBufferReference is called by BufferRecord.Sweep when a buffer this
// surface references is destroyed (§4.4).
func (s *Surface) dropBufferReference(b *BufferRecord) {
	s.mu.Lock()
	if s.pending.Buffer == b {
		s.pending.Buffer = nil
	}
	if s.applied.Buffer == b {
		s.applied.Buffer = nil
	}
	s.mu.Unlock()
}

// TakeArmedCallback implements frame.ArmedSource.
func (s *Surface) TakeArmedCallback() *objects.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	cb := s.armedCallback
	s.armedCallback = nil
	return cb
}

// Destroy tears down the surface: deregisters it from the frame scheduler
// and from its parent's child list, and drops any still-armed callback
// without firing it.
func (s *Surface) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	parent := s.parent
	s.mu.Unlock()

	s.scheduler.Deregister(s)
	if parent != nil {
		parent.mu.Lock()
		for i, c := range parent.children {
			if c == s {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
		parent.mu.Unlock()
	}
}
