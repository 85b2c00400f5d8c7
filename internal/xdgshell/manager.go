// Package xdgshell implements C6: the xdg_wm_base family — the
// configure/ack handshake, toplevel window state, and the popup/positioner
// constraint-adjustment protocol.
package xdgshell

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

// ConfigureWatchdogTimeout is how long a sent configure may go unacked
// before it is logged as stuck (§9, supplemented diagnostic borrowed from
// the original implementation's configure-ack bookkeeping). It never
// disconnects the client on its own — it's a diagnostic, not a protocol
// enforcement mechanism.
const ConfigureWatchdogTimeout = 10 * time.Second

// Manager owns the process-wide xdg_wm_base state: the monotonic configure
// serial counter, every surface awaiting an ack (for the watchdog pass), and
// the most recently acked serial per surface so a repeat ack of the same
// serial can be recognized as a no-op rather than an unknown-serial error
// (§8: "double-acking the same configure serial is accepted").
type Manager struct {
	log zerolog.Logger

	mu          sync.Mutex
	serial      uint32
	inflight    map[uint32]*inflightConfigure
	ackedSerial map[*XdgSurface]uint32
}

type inflightConfigure struct {
	surface *XdgSurface
	sentAt  time.Time
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:         log.With().Str("component", "xdgshell").Logger(),
		inflight:    make(map[uint32]*inflightConfigure),
		ackedSerial: make(map[*XdgSurface]uint32),
	}
}

func (m *Manager) nextSerial() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serial++
	return m.serial
}

func (m *Manager) trackConfigure(xs *XdgSurface, serial uint32) {
	m.mu.Lock()
	m.inflight[serial] = &inflightConfigure{surface: xs, sentAt: time.Now()}
	m.mu.Unlock()
}

// ack resolves an ack_configure(serial) request. A serial still awaiting its
// first ack is consumed normally. A serial that was already acked by its
// surface and has not since been superseded by a newer ack is recognized
// again rather than rejected — re-acking the same serial twice is valid
// protocol traffic, not a protocol error. A serial neither in flight nor
// previously acked (unknown, foreign, or superseded by a later ack) returns
// nil.
func (m *Manager) ack(serial uint32) *XdgSurface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.inflight[serial]; ok {
		delete(m.inflight, serial)
		m.ackedSerial[c.surface] = serial
		return c.surface
	}
	for xs, last := range m.ackedSerial {
		if last == serial {
			return xs
		}
	}
	return nil
}

// forget drops every trace of xs from the manager's bookkeeping, called from
// XdgSurface's destructor so a destroyed surface's id isn't kept alive as an
// acked-serial map key forever.
func (m *Manager) forget(xs *XdgSurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ackedSerial, xs)
	for serial, c := range m.inflight {
		if c.surface == xs {
			delete(m.inflight, serial)
		}
	}
}

// CheckWatchdog logs every configure that has been outstanding longer than
// ConfigureWatchdogTimeout. cmd/waycored's watchdog loop calls this
// periodically; it never mutates protocol state.
func (m *Manager) CheckWatchdog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for serial, c := range m.inflight {
		if now.Sub(c.sentAt) > ConfigureWatchdogTimeout {
			m.log.Warn().
				Uint32("serial", serial).
				Dur("age", now.Sub(c.sentAt)).
				Msg("xdg_surface configure has not been acked")
		}
	}
}

// Bind installs the xdg_wm_base global's bind function (§6). compositor
// supplies the wl_compositor's surface lookup so get_xdg_surface can find
// the underlying surface.Surface.
func (m *Manager) Bind(surfaceOf func(*objects.Resource) *surface.Surface) globalreg.BindFunc {
	return func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
		r, err := client.Create(proto.XdgWmBase, version, id)
		if err != nil {
			return nil, err
		}
		wb := &wmBase{mgr: m, resource: r, surfaceOf: surfaceOf}
		r.BindImplementation(wb, wb.dispatch, wb.destroy)
		return r, nil
	}
}

type wmBase struct {
	mgr       *Manager
	resource  *objects.Resource
	surfaceOf func(*objects.Resource) *surface.Surface
}

func (w *wmBase) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.WmBaseRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.WmBaseRequestCreatePositioner:
		id, err := args.Object()
		if err != nil {
			return err
		}
		return newPositioner(r.Client(), id)
	case proto.WmBaseRequestGetXdgSurface:
		id, err := args.Object()
		if err != nil {
			return err
		}
		surfaceID, err := args.Object()
		if err != nil {
			return err
		}
		target, err := r.Client().LookupTyped(surfaceID, proto.WlSurface)
		if err != nil {
			return err
		}
		s := w.surfaceOf(target)
		if s == nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidSurface, "object %d is not a tracked wl_surface", surfaceID)
		}
		return newXdgSurface(w.mgr, r.Client(), id, s)
	case proto.WmBaseRequestPong:
		_, err := args.Uint32()
		return err
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "xdg_wm_base: unknown opcode %d", opcode)
	}
}

func (w *wmBase) destroy(r *objects.Resource) {}
