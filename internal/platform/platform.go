// Package platform defines the external windowing-host seam (§6): the
// thin boundary between this engine's protocol-level toplevel/popup state
// and whatever owns actual OS windows (a nested host compositor, a
// headless test double, or a native window-system backend).
package platform

import "github.com/wlhost/waycore/internal/xdgshell"

// Host is implemented by the windowing backend. Every method is called
// from the dispatch thread; implementations that need to cross to another
// thread (e.g. a platform main-loop) must hop internally rather than
// block it.
type Host interface {
	CreateNativeWindow(t *xdgshell.Toplevel) error
	DestroyNativeWindow(t *xdgshell.Toplevel)
	SetTitle(t *xdgshell.Toplevel, title string)
	SetSize(t *xdgshell.Toplevel, width, height int32)

	// InjectInput forwards a host-originated input event (e.g. from a
	// nested parent compositor) back into this engine. The event is untyped
	// (`any`): internal/seat defines no input-event type, and NoOp discards
	// the event.
	InjectInput(event any)
}

// NoOp is the default Host used when no real windowing backend is wired
// (headless runs, unit tests).
type NoOp struct{}

func (NoOp) CreateNativeWindow(*xdgshell.Toplevel) error         { return nil }
func (NoOp) DestroyNativeWindow(*xdgshell.Toplevel)              {}
func (NoOp) SetTitle(*xdgshell.Toplevel, string)                 {}
func (NoOp) SetSize(*xdgshell.Toplevel, int32, int32)            {}
func (NoOp) InjectInput(any)                                     {}
