// Package compositor implements the Display: the orchestration layer that
// owns the global registry, the client set, and the single-threaded
// dispatch loop every other component is wired into (§5, §6).
package compositor

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/wlhost/waycore/internal/config"
	"github.com/wlhost/waycore/internal/datadevice"
	"github.com/wlhost/waycore/internal/frame"
	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/logging"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/outputs"
	"github.com/wlhost/waycore/internal/platform"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/renderer"
	"github.com/wlhost/waycore/internal/seat"
	"github.com/wlhost/waycore/internal/stubglobals"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
	"github.com/wlhost/waycore/internal/xdgshell"
)

// Display is the process-wide compositor state (§3, §6).
type Display struct {
	log zerolog.Logger
	cfg *config.Live

	Registry  *globalreg.Registry
	Scheduler *frame.Scheduler
	Xdg       *xdgshell.Manager
	Seat      *seat.Seat
	DataMgr   *datadevice.Manager

	render renderer.Collaborator
	host   platform.Host

	surfacesMu sync.Mutex
	surfaces   map[*objects.Resource]*surface.Surface

	clientsMu   sync.Mutex
	clientCount int
	clients     conc.WaitGroup
}

// New builds a Display and advertises its full global set (§6's table).
func New(cfg *config.Live, log zerolog.Logger, render renderer.Collaborator, host platform.Host, outs []outputs.Output) *Display {
	if render == nil {
		render = renderer.NoOp{}
	}
	if host == nil {
		host = platform.NoOp{}
	}
	d := &Display{
		log:      log,
		cfg:      cfg,
		Registry: globalreg.New(),
		Scheduler: frame.NewScheduler(),
		Xdg:      xdgshell.NewManager(log),
		Seat:     seat.New("seat0", seat.CapabilityPointer|seat.CapabilityKeyboard|seat.CapabilityTouch, seat.Keymap{Format: 1, Fd: -1}),
		DataMgr:  datadevice.NewManager(),
		render:   render,
		host:     host,
		surfaces: make(map[*objects.Resource]*surface.Surface),
	}
	d.registerGlobals(outs)
	return d
}

func (d *Display) registerGlobals(outs []outputs.Output) {
	d.Registry.Add(proto.WlCompositor, proto.WlCompositor.Version, d.bindCompositor)
	d.Registry.Add(proto.WlSubcompositor, proto.WlSubcompositor.Version, d.bindSubcompositor)
	d.Registry.Add(proto.WlShm, proto.WlShm.Version, d.bindShm)
	d.Registry.Add(proto.WlSeat, proto.WlSeat.Version, d.Seat.Bind())
	d.Registry.Add(proto.WlDataDeviceManager, proto.WlDataDeviceManager.Version, d.DataMgr.Bind())
	d.Registry.Add(proto.XdgWmBase, proto.XdgWmBase.Version, d.Xdg.Bind(d.surfaceOf))
	d.Registry.Add(proto.ZxdgDecorationManagerV1, proto.ZxdgDecorationManagerV1.Version,
		xdgshell.BindDecorationManager(d.cfg.DecorationPolicy))
	d.Registry.Add(proto.ZwpLinuxDmabufV1, proto.ZwpLinuxDmabufV1.Version, d.bindLinuxDmabuf)
	d.Registry.Add(proto.WpViewporter, proto.WpViewporter.Version, d.bindViewporter)
	for _, o := range outs {
		d.Registry.Add(proto.WlOutput, proto.WlOutput.Version, o.Bind())
	}
	stubglobals.RegisterAll(d.Registry)
}

func (d *Display) surfaceOf(r *objects.Resource) *surface.Surface {
	d.surfacesMu.Lock()
	defer d.surfacesMu.Unlock()
	return d.surfaces[r]
}

// Serve accepts connections from l until it is closed, running each
// client's dispatch loop on its own goroutine (§5: "one dispatch thread per
// connection; cross-client state goes through Display's locks"). Client
// goroutines run under a conc.WaitGroup so a panic while servicing one
// client surfaces as a recovered error instead of taking the process down.
func (d *Display) Serve(l *wire.Listener) error {
	for {
		conn, err := l.AcceptUnix()
		if err != nil {
			return fmt.Errorf("compositor: accept: %w", err)
		}
		if !d.cfg.Get().MultipleClients && !d.tryClaimSoleClient() {
			conn.Close()
			continue
		}
		d.clients.Go(func() { d.serveClient(conn) })
	}
}

// Wait blocks until every in-flight client goroutine has returned. Callers
// shutting down should close the listener first so Serve's accept loop
// unwinds, then call Wait.
func (d *Display) Wait() {
	d.clients.Wait()
}

func (d *Display) tryClaimSoleClient() bool {
	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()
	if d.clientCount > 0 {
		return false
	}
	d.clientCount++
	return true
}

func (d *Display) releaseClientSlot() {
	d.clientsMu.Lock()
	d.clientCount--
	d.clientsMu.Unlock()
}

func (d *Display) serveClient(nc *net.UnixConn) {
	defer d.releaseClientSlot()

	conn, err := wire.NewConn(nc)
	if err != nil {
		d.log.Warn().Err(err).Msg("compositor: wrapping accepted connection")
		nc.Close()
		return
	}
	defer conn.Close()

	runID := uuid.NewString()
	log := logging.WithRun(d.log, runID)
	client := objects.NewClient(conn, log)
	log = logging.WithClient(log, client.ID())

	displayResource, err := client.Create(proto.WlDisplay, 1, 1)
	if err != nil {
		log.Error().Err(err).Msg("compositor: allocating wl_display object 1")
		return
	}
	dd := &displayDispatch{d: d, client: client}
	displayResource.BindImplementation(dd, dd.dispatch, func(*objects.Resource) {})

	defer d.teardownClient(client)

	stall := d.cfg.Get().StallTimeout
	lastOverHighWatermark := time.Time{}

	for {
		m, err := conn.ReadMessage()
		if err != nil {
			if client.CloseReason() == nil {
				client.MarkClosed()
			}
			log.Debug().Err(err).Msg("compositor: client connection ended")
			return
		}
		if err := client.Dispatch(m); err != nil {
			if protoerr.Fatal(err) {
				pe := err.(*protoerr.Error)
				log.Warn().Uint32("object", pe.Object).Uint32("code", uint32(pe.Code)).Msg(pe.Message)
				displayResource.PostError(uint32(pe.Code), pe.Message)
			} else {
				log.Warn().Err(err).Msg("compositor: non-fatal dispatch error")
			}
		}
		if client.Closed() {
			return
		}

		if conn.Pending() > wire.HighWatermark {
			if lastOverHighWatermark.IsZero() {
				lastOverHighWatermark = time.Now()
			} else if stall > 0 && time.Since(lastOverHighWatermark) > stall {
				log.Warn().Dur("stalled_for", time.Since(lastOverHighWatermark)).Msg("compositor: disconnecting stalled client")
				return
			}
		} else {
			lastOverHighWatermark = time.Time{}
		}
	}
}

func (d *Display) teardownClient(client *objects.Client) {
	client.Teardown()
}

// displayDispatch implements wl_display's two requests (§4.1).
type displayDispatch struct {
	d      *Display
	client *objects.Client
}

func (dd *displayDispatch) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.DisplayRequestSync:
		id, err := args.Object()
		if err != nil {
			return err
		}
		cb, err := r.Client().Create(proto.WlCallback, 1, id)
		if err != nil {
			return err
		}
		cb.BindImplementation(nil, func(*objects.Resource, uint16, *wire.ArgReader) error { return nil }, func(*objects.Resource) {})
		_ = cb.SendEvent(proto.CallbackEventDone, wire.NewArgWriter().Uint32(0))
		r.Client().Destroy(cb)
		return nil
	case proto.DisplayRequestGetRegistry:
		id, err := args.Object()
		if err != nil {
			return err
		}
		reg, err := r.Client().Create(proto.WlRegistry, 1, id)
		if err != nil {
			return err
		}
		rd := &registryDispatch{d: dd.d}
		reg.BindImplementation(rd, rd.dispatch, func(reg *objects.Resource) { dd.d.Registry.Forget(reg) })
		dd.d.Registry.Announce(reg)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_display: unknown opcode %d", opcode)
	}
}

type registryDispatch struct {
	d *Display
}

func (rd *registryDispatch) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.RegistryRequestBind:
		name, err := args.Uint32()
		if err != nil {
			return err
		}
		ifaceName, err := args.String()
		if err != nil {
			return err
		}
		version, err := args.Uint32()
		if err != nil {
			return err
		}
		id, err := args.Object()
		if err != nil {
			return err
		}
		_ = ifaceName // the advertised interface name is informational; Bind resolves purely by name (§4.3)
		_, err = rd.d.Registry.Bind(r.Client(), name, version, id)
		return err
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_registry: unknown opcode %d", opcode)
	}
}
