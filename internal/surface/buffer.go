package surface

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/wire"
)

// BufferRecord wraps a wl_buffer resource (SHM- or DMA-BUF-backed; the
// concrete pixel storage lives in internal/shm and is opaque here) with
// the bookkeeping the buffer-release protocol and buffer-reference sweep
// need (§4.4).
type BufferRecord struct {
	Resource *objects.Resource
	Width    int32
	Height   int32

	mu   sync.Mutex
	refs map[*Surface]struct{}

	// releaseSent guards against a double buffer.release send for the
	// same still-live buffer (§4.5 step 3: "guarded against already-sent").
	releaseSent bool
}

func NewBufferRecord(resource *objects.Resource, width, height int32) *BufferRecord {
	return &BufferRecord{Resource: resource, Width: width, Height: height, refs: make(map[*Surface]struct{})}
}

func (b *BufferRecord) addRef(s *Surface) {
	b.mu.Lock()
	b.refs[s] = struct{}{}
	b.mu.Unlock()
}

func (b *BufferRecord) removeRef(s *Surface) {
	b.mu.Lock()
	delete(b.refs, s)
	b.mu.Unlock()
}

// reapplied resets the release guard when this buffer becomes a surface's
// applied buffer again, so a later replacement releases it again — a
// client may legitimately reuse the same wl_buffer object across many
// attach/commit cycles.
func (b *BufferRecord) reapplied() {
	b.mu.Lock()
	b.releaseSent = false
	b.mu.Unlock()
}

// Release sends wl_buffer.release exactly once for this buffer's current
// lifetime (§4.4 "Buffer release protocol"). Safe to call redundantly.
func (b *BufferRecord) Release() {
	b.mu.Lock()
	if b.releaseSent {
		b.mu.Unlock()
		return
	}
	b.releaseSent = true
	b.mu.Unlock()
	_ = b.Resource.SendEvent(proto.BufferEventRelease, wire.NewArgWriter())
}

// Sweep implements §4.4's buffer-reference sweep: every surface currently
// referencing this (now-destroyed) buffer in either pending or applied
// state drops the reference, with no release event — the buffer is gone,
// not merely replaced.
func (b *BufferRecord) Sweep() {
	b.mu.Lock()
	surfaces := make([]*Surface, 0, len(b.refs))
	for s := range b.refs {
		surfaces = append(surfaces, s)
	}
	b.refs = make(map[*Surface]struct{})
	b.mu.Unlock()

	for _, s := range surfaces {
		s.dropBufferReference(b)
	}
}
