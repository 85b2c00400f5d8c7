// Package objects implements C2: the per-client object-id → resource table
// and the lifetime/teardown rules every other subsystem builds on.
package objects

import (
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/wire"
)

// ServerIDFlag marks the high bit of an object-id partition: ids with this
// bit set are server-allocated, ids without it are client-allocated (§3.2).
const ServerIDFlag uint32 = 1 << 31

// Dispatch handles one decoded request against a resource's implementation.
// It returns a *protoerr.Error for protocol violations (the dispatcher
// turns those into a wire error + teardown) or a non-fatal error to log.
type Dispatch func(r *Resource, opcode uint16, args *wire.ArgReader) error

// Destructor runs exactly once, before a resource's slot is reclaimed
// (§3.1, §4.2). It must not allocate protocol objects or call into the
// peer (§4.2), and must tolerate being invoked on an already-removed slot.
type Destructor func(r *Resource)

// Resource is a (client, object-id, interface, version, user-data,
// destructor) tuple (§3.1).
type Resource struct {
	client  *Client
	id      uint32
	iface   proto.Interface
	version uint32

	data       any
	dispatch   Dispatch
	destructor Destructor
	destroyed  bool

	seq int // creation order, used for reverse-order teardown
}

func (r *Resource) ID() uint32              { return r.id }
func (r *Resource) Interface() proto.Interface { return r.iface }
func (r *Resource) Version() uint32         { return r.version }
func (r *Resource) Client() *Client         { return r.client }
func (r *Resource) Data() any               { return r.data }
func (r *Resource) Destroyed() bool         { return r.destroyed }

// SetData replaces the resource's user-data pointer. Handlers use this
// instead of a raw field so the registry's typed Lookup can never hand
// back a stale or mismatched pointer (§9, "compile-time invariants").
func (r *Resource) SetData(data any) { r.data = data }

// BindImplementation installs the dispatch table, user-data, and
// destructor for a freshly created resource exactly once (§4.2).
func (r *Resource) BindImplementation(data any, dispatch Dispatch, destructor Destructor) {
	r.data = data
	r.dispatch = dispatch
	r.destructor = destructor
}

// SendEvent writes an event from this resource to its client.
func (r *Resource) SendEvent(opcode uint16, args *wire.ArgWriter) error {
	return r.client.send(args.Build(r.id, opcode))
}

// PostError disconnects the resource's client with a display.error event,
// the universal way a protocol violation is signalled (§4.1, §7).
func (r *Resource) PostError(code uint32, message string) {
	r.client.postError(r.id, code, message)
}
