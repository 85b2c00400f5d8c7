// Package renderer defines the external rendering collaborator's seam
// (§6): the core hands it committed surface state and awaits two
// asynchronous acknowledgements — a buffer retire (gating buffer.release)
// and a presentation signal (driving the frame-callback scheduler). The
// core never touches pixels itself (§1 non-goals).
package renderer

import "github.com/wlhost/waycore/internal/surface"

// Collaborator is implemented by whatever actually turns composited
// surface trees into pixels — a GL/Vulkan backend, a software rasterizer,
// or (in tests) a recording fake.
type Collaborator interface {
	// SurfaceCommitted is called synchronously from the dispatch thread
	// right after a commit is applied (§4.5 step 5). Implementations must
	// not block on anything but their own internal queuing.
	SurfaceCommitted(s *surface.Surface)

	// RetireBuffer is called when a buffer stops being a surface's applied
	// buffer. done must be invoked exactly once, from any goroutine, once
	// the collaborator is provably no longer reading the buffer's memory —
	// only then is it safe to send wl_buffer.release (§4.4, §5).
	RetireBuffer(old *surface.BufferRecord, done func())
}

// NoOp immediately retires every buffer and otherwise does nothing; it's
// the default used where no real backend is wired (unit tests, headless
// runs of cmd/waycored).
type NoOp struct{}

func (NoOp) SurfaceCommitted(*surface.Surface) {}

func (NoOp) RetireBuffer(_ *surface.BufferRecord, done func()) {
	if done != nil {
		done()
	}
}
