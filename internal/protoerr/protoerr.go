// Package protoerr defines the fatal-to-a-client error taxonomy used across
// the engine: protocol violations, resource exhaustion, and the generic
// wire-level "display.error" event they are reported as.
package protoerr

import "fmt"

// Code mirrors the small set of wire error codes clients are expected to
// switch on. Interface-specific codes (e.g. wl_shm.error.invalid_stride)
// share the same underlying representation; Object carries which resource
// raised them.
type Code uint32

const (
	// Global wl_display error codes.
	CodeInvalidObject  Code = 0
	CodeInvalidMethod  Code = 1
	CodeNoMemory       Code = 2
	CodeImplementation Code = 3

	// wl_shm.error
	CodeInvalidFormat Code = 0x1000
	CodeInvalidStride Code = 0x1001
	CodeInvalidFd     Code = 0x1002

	// zwp_linux_buffer_params_v1.error
	CodeAlreadyUsed       Code = 0x2000
	CodePlaneSet          Code = 0x2001
	CodeIncomplete        Code = 0x2002
	CodeInvalidDimensions Code = 0x2003

	// xdg_surface.error / xdg_wm_base.error
	CodeInvalidSerial  Code = 0x3000
	CodeInvalidSurface Code = 0x3001
	CodeRole           Code = 0x3002
	CodeDefunctSurfaces Code = 0x3003
)

// Error is a protocol violation or resource-exhaustion condition raised by
// a handler. The dispatcher turns it into a wire display.error event
// followed by disconnecting the offending client; it never propagates
// further than the client that caused it (§7 of the design).
type Error struct {
	Object  uint32
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("object %d: code %d: %s", e.Object, e.Code, e.Message)
}

// New builds a fatal protocol error attributed to object.
func New(object uint32, code Code, format string, args ...any) *Error {
	return &Error{Object: object, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Fatal reports whether err should disconnect the client rather than merely
// being logged. Every *Error is fatal by construction; anything else is a
// recoverable local error (§7).
func Fatal(err error) bool {
	_, ok := err.(*Error)
	return ok
}
