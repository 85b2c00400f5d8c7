// Package datadevice implements the clipboard half of wl_data_device_manager
// (§9, supplemented: the distilled spec's non-goals exclude drag-and-drop
// gesture tracking, but selection/clipboard broadcast is a small, self-
// contained piece of the same global the original implementation wired up).
package datadevice

import (
	"sync"

	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/wire"
)

// Manager is the process-wide data-device-manager state: the single
// current selection and every live wl_data_device that must be told about
// it.
type Manager struct {
	mu        sync.Mutex
	devices   map[*objects.Resource]struct{}
	selection *source
}

func NewManager() *Manager {
	return &Manager{devices: make(map[*objects.Resource]struct{})}
}

// Bind installs wl_data_device_manager's bind function.
func (m *Manager) Bind() globalreg.BindFunc {
	return func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
		r, err := client.Create(proto.WlDataDeviceManager, version, id)
		if err != nil {
			return nil, err
		}
		dm := &managerClient{mgr: m}
		r.BindImplementation(dm, dm.dispatch, func(*objects.Resource) {})
		return r, nil
	}
}

type managerClient struct {
	mgr *Manager
}

func (dm *managerClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.DataDeviceManagerRequestCreateDataSource:
		id, err := args.Object()
		if err != nil {
			return err
		}
		sr, err := r.Client().Create(proto.WlDataSource, 3, id)
		if err != nil {
			return err
		}
		src := &source{resource: sr}
		sr.BindImplementation(src, src.dispatch, func(*objects.Resource) {})
		return nil
	case proto.DataDeviceManagerRequestGetDataDevice:
		id, err := args.Object()
		if err != nil {
			return err
		}
		if _, err := args.Object(); err != nil { // seat
			return err
		}
		dr, err := r.Client().Create(proto.WlDataDevice, 3, id)
		if err != nil {
			return err
		}
		dc := &deviceClient{mgr: dm.mgr, resource: dr}
		dr.BindImplementation(dc, dc.dispatch, dc.destroy)
		dm.mgr.mu.Lock()
		dm.mgr.devices[dr] = struct{}{}
		sel := dm.mgr.selection
		dm.mgr.mu.Unlock()
		if sel != nil {
			dc.offer(sel)
		}
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_data_device_manager: unknown opcode %d", opcode)
	}
}

// source is a wl_data_source: just the set of MIME types it offers. Actual
// payload transfer happens over a client-supplied pipe fd the core never
// inspects (§1 non-goals: no data-path, it only accounts for object
// lifetime and broadcast timing).
type source struct {
	resource *objects.Resource
	mimeTypes []string
}

func (s *source) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case 0: // offer(mime_type)
		mt, err := args.String()
		if err != nil {
			return err
		}
		s.mimeTypes = append(s.mimeTypes, mt)
		return nil
	case 1: // destroy
		r.Client().Destroy(r)
		return nil
	default:
		return nil
	}
}

type deviceClient struct {
	mgr      *Manager
	resource *objects.Resource
}

func (dc *deviceClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.DataDeviceRequestStartDrag:
		// Drag-and-drop gesture tracking is out of scope (§1 non-goals);
		// the request is accepted as a no-op so well-behaved clients don't
		// treat silence as a protocol error.
		if _, err := args.Object(); err != nil { // source
			return err
		}
		if _, err := args.Object(); err != nil { // origin
			return err
		}
		if _, err := args.Object(); err != nil { // icon
			return err
		}
		_, err := args.Uint32() // serial
		return err
	case proto.DataDeviceRequestSetSelection:
		srcID, err := args.Object()
		if err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil { // serial
			return err
		}
		var src *source
		if srcID != 0 {
			srcRes, err := r.Client().LookupTyped(srcID, proto.WlDataSource)
			if err != nil {
				return err
			}
			src, _ = srcRes.Data().(*source)
		}
		dc.mgr.setSelection(src)
		return nil
	case proto.DataDeviceRequestRelease:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_data_device: unknown opcode %d", opcode)
	}
}

func (dc *deviceClient) destroy(*objects.Resource) {
	dc.mgr.mu.Lock()
	delete(dc.mgr.devices, dc.resource)
	dc.mgr.mu.Unlock()
}

// offer sends a fresh wl_data_offer advertising src's MIME types followed
// by data_device.selection naming it (§4.3-adjacent broadcast pattern).
func (dc *deviceClient) offer(src *source) {
	offerID := dc.resource.Client().AllocateServerID()
	offerRes, err := dc.resource.Client().Create(proto.WlDataOffer, 3, offerID)
	if err != nil {
		return
	}
	offerRes.BindImplementation(src, dispatchOffer, func(*objects.Resource) {})

	_ = dc.resource.SendEvent(proto.DataDeviceEventDataOffer, wire.NewArgWriter().Object(offerID))
	for _, mt := range src.mimeTypes {
		_ = offerRes.SendEvent(0 /* offer(mime_type) */, wire.NewArgWriter().String(mt))
	}
	_ = dc.resource.SendEvent(proto.DataDeviceEventSelection, wire.NewArgWriter().Object(offerID))
}

// dispatchOffer handles wl_data_offer's requests. accept/receive/finish are
// accepted and their arguments consumed so the dispatcher's trailing-bytes
// check passes, but no actual payload transfer happens (§1 non-goals: no
// data-path through the core).
func dispatchOffer(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case 0: // accept(serial, mime_type?)
		if _, err := args.Uint32(); err != nil {
			return err
		}
		if !args.Done() {
			if _, err := args.String(); err != nil {
				return err
			}
		}
		return nil
	case 1: // receive(mime_type, fd)
		if _, err := args.String(); err != nil {
			return err
		}
		_, err := args.Fd()
		return err
	case 2: // destroy
		r.Client().Destroy(r)
		return nil
	case 3: // finish
		return nil
	case 4: // set_actions(dnd_actions, preferred_action)
		if _, err := args.Uint32(); err != nil {
			return err
		}
		_, err := args.Uint32()
		return err
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_data_offer: unknown opcode %d", opcode)
	}
}

// setSelection broadcasts the new selection (or its clearing, src == nil)
// to every live data device.
func (m *Manager) setSelection(src *source) {
	m.mu.Lock()
	m.selection = src
	devices := make([]*objects.Resource, 0, len(m.devices))
	for d := range m.devices {
		devices = append(devices, d)
	}
	m.mu.Unlock()

	for _, d := range devices {
		dc, _ := d.Data().(*deviceClient)
		if dc == nil {
			continue
		}
		if src == nil {
			_ = d.SendEvent(proto.DataDeviceEventSelection, wire.NewArgWriter().Object(0))
			continue
		}
		dc.offer(src)
	}
}
