package objects

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/wire"
	"golang.org/x/exp/slices"
)

// Sender is the minimal outbound surface objects.Client needs from the wire
// transport; internal/compositor supplies the real *wire.Conn, tests supply
// a recording fake.
type Sender interface {
	WriteMessage(wire.Message) error
}

var clientSeq int64

// Client is one connected peer: its object-id table, creation-order
// bookkeeping for reverse-order teardown, and the conn used to emit events
// and protocol errors (§3.1).
type Client struct {
	id   int64
	conn Sender
	log  zerolog.Logger

	resources   map[uint32]*Resource
	nextSeq     int
	nextServer  uint32
	closed      bool
	closeReason error
}

// NewClient wraps a freshly accepted connection. Object-id 1 is reserved
// for wl_display by convention but the display resource itself is created
// by the caller via Create, same as every other resource.
func NewClient(conn Sender, log zerolog.Logger) *Client {
	id := atomic.AddInt64(&clientSeq, 1)
	return &Client{
		id:         id,
		conn:       conn,
		log:        log.With().Int64("client", id).Logger(),
		resources:  make(map[uint32]*Resource),
		nextServer: ServerIDFlag | 1,
	}
}

func (c *Client) ID() int64          { return c.id }
func (c *Client) Log() zerolog.Logger { return c.log }
func (c *Client) Closed() bool       { return c.closed }

// AllocateServerID returns the next server-side object-id (high bit set,
// §3.2), used when a handler creates a wire object the client didn't
// request an id for: the wl_data_offer announced by wl_data_device and the
// wl_buffer announced by zwp_linux_buffer_params_v1.created.
func (c *Client) AllocateServerID() uint32 {
	id := c.nextServer
	c.nextServer++
	return id
}

// Create allocates a resource slot for id. It fails with INVALID_OBJECT if
// the id is already in use (§4.2).
func (c *Client) Create(iface proto.Interface, version uint32, id uint32) (*Resource, error) {
	if existing := c.resources[id]; existing != nil {
		return nil, protoerr.New(1, protoerr.CodeInvalidObject, "object id %d already in use", id)
	}
	if version > iface.Version {
		return nil, protoerr.New(1, protoerr.CodeInvalidMethod, "version %d exceeds %s's supported version %d", version, iface.Name, iface.Version)
	}
	r := &Resource{client: c, id: id, iface: iface, version: version, seq: c.nextSeq}
	c.nextSeq++
	c.resources[id] = r
	return r, nil
}

// Lookup finds a live resource by id, or nil.
func (c *Client) Lookup(id uint32) *Resource {
	r := c.resources[id]
	if r == nil || r.destroyed {
		return nil
	}
	return r
}

// LookupTyped looks up id and checks it against iface, returning a
// protocol error if the object doesn't exist or has the wrong interface —
// the typed-lookup replacement for the teacher's runtime pointer/user-data
// checks (§9).
func (c *Client) LookupTyped(id uint32, iface proto.Interface) (*Resource, error) {
	r := c.Lookup(id)
	if r == nil {
		return nil, protoerr.New(1, protoerr.CodeInvalidObject, "unknown object %d", id)
	}
	if r.iface.Name != iface.Name {
		return nil, protoerr.New(1, protoerr.CodeInvalidObject, "object %d is %s, not %s", id, r.iface.Name, iface.Name)
	}
	return r, nil
}

// Destroy runs r's destructor (if any), removes its slot, and acks the
// wire delete-id so the client may recycle the id (§4.2). Idempotent: a
// double-destroy is a silent no-op, matching the destructor-tolerance
// requirement.
func (c *Client) Destroy(r *Resource) {
	if r == nil || r.destroyed {
		return
	}
	r.destroyed = true
	if r.destructor != nil {
		r.destructor(r)
	}
	delete(c.resources, r.id)
	_ = c.send(wire.NewArgWriter().Uint32(r.id).Build(1, 1 /* wl_display.delete_id */))
}

// Dispatch routes one decoded message to its target resource's
// implementation. Unknown object-ids and resources with no installed
// implementation are protocol errors per §4.1.
func (c *Client) Dispatch(m wire.Message) error {
	r := c.Lookup(m.Sender)
	if r == nil {
		return protoerr.New(m.Sender, protoerr.CodeInvalidObject, "request for unknown or destroyed object %d", m.Sender)
	}
	if r.dispatch == nil {
		return protoerr.New(m.Sender, protoerr.CodeInvalidMethod, "object %d (%s) has no implementation bound", m.Sender, r.iface.Name)
	}
	args := wire.NewArgReader(m)
	if err := r.dispatch(r, m.Opcode, args); err != nil {
		return err
	}
	if !args.Done() {
		return protoerr.New(m.Sender, protoerr.CodeInvalidMethod, "trailing bytes in request %d.%d", m.Sender, m.Opcode)
	}
	return nil
}

func (c *Client) send(m wire.Message) error {
	if c.closed {
		return fmt.Errorf("objects: client %d is closed", c.id)
	}
	return c.conn.WriteMessage(m)
}

// postError sends display.error and marks the client for teardown; the
// dispatch loop (internal/compositor) observes Closed() and tears down the
// connection after flushing it.
func (c *Client) postError(object uint32, code uint32, message string) {
	if c.closed {
		return
	}
	_ = c.send(wire.NewArgWriter().Object(object).Uint32(code).String(message).Build(1, 0 /* wl_display.error */))
	c.closed = true
	c.closeReason = fmt.Errorf("protocol error on object %d: code %d: %s", object, code, message)
}

// CloseReason is non-nil once the client has been marked for teardown via
// a protocol error.
func (c *Client) CloseReason() error { return c.closeReason }

// MarkClosed flags the client as closed without sending display.error
// (EOF, explicit shutdown).
func (c *Client) MarkClosed() { c.closed = true }

// Teardown destroys every remaining resource in reverse creation order, so
// children are destroyed before parents (§4.2). It is infallible: a
// destructor must never fail (§7).
func (c *Client) Teardown() {
	all := make([]*Resource, 0, len(c.resources))
	for _, r := range c.resources {
		all = append(all, r)
	}
	slices.SortFunc(all, func(a, b *Resource) int { return b.seq - a.seq })
	for _, r := range all {
		c.Destroy(r)
	}
}
