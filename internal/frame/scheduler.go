// Package frame implements C8: coalescing client frame-callback requests
// and firing them from the compositor's display-refresh signal.
package frame

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/wire"
)

// ArmedSource is anything that can have an outstanding, post-commit frame
// callback — internal/surface.Surface is the only implementation. Keeping
// the interface this narrow avoids an import cycle between frame and
// surface while letting the scheduler stay ignorant of surface internals.
type ArmedSource interface {
	// TakeArmedCallback returns and clears the callback resource due to
	// fire on the next presentation signal, or nil if none is armed.
	TakeArmedCallback() *objects.Resource
}

// Scheduler coalesces every registered surface's armed callback into a
// single fire pass per presentation signal (§4.8).
type Scheduler struct {
	mu        sync.Mutex
	surfaces  map[ArmedSource]struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{surfaces: make(map[ArmedSource]struct{})}
}

// Register adds a surface to the set walked by Fire. Called once at
// surface creation.
func (s *Scheduler) Register(src ArmedSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surfaces[src] = struct{}{}
}

// Deregister removes a surface, e.g. on its destruction.
func (s *Scheduler) Deregister(src ArmedSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surfaces, src)
}

// Fire is driven by the renderer's "presented" signal (§6). Every
// registered surface's armed callback (if any) is fulfilled with the same
// timestamp and destroyed; surfaces with nothing armed are skipped
// entirely, satisfying "no callback ⇒ no tick" at the per-surface level.
// Ordering across surfaces within one pass is unspecified (§4.8).
func (s *Scheduler) Fire(timestampMs uint32) {
	s.mu.Lock()
	due := make([]*objects.Resource, 0, len(s.surfaces))
	for src := range s.surfaces {
		if cb := src.TakeArmedCallback(); cb != nil {
			due = append(due, cb)
		}
	}
	s.mu.Unlock()

	for _, cb := range due {
		_ = cb.SendEvent(proto.CallbackEventDone, wire.NewArgWriter().Uint32(timestampMs))
		cb.Client().Destroy(cb)
	}
}
