// Package globalreg implements C3: the process-wide set of advertised
// interfaces, per-client enumeration, and bind/remove semantics (§4.3).
package globalreg

import (
	"sync"

	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/wire"
)

// BindFunc creates the concrete resource for a bind request. version is
// already clamped to min(client-requested, advertised) by Registry.Bind.
type BindFunc func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error)

// Global is a single advertised (name, interface, version, bind-fn) entry
// (§3.1).
type Global struct {
	Name      uint32
	Interface proto.Interface
	Version   uint32
	Bind      BindFunc

	removed bool
}

// Registry is the process-wide global list plus the set of live
// wl_registry resources that need global_remove broadcasts (§4.3).
type Registry struct {
	mu         sync.Mutex
	nextName   uint32
	globals    map[uint32]*Global
	registries map[*objects.Resource]struct{}
}

func New() *Registry {
	return &Registry{
		globals:    make(map[uint32]*Global),
		registries: make(map[*objects.Resource]struct{}),
	}
}

// Add advertises a new global, returning its handle. Safe to call after
// clients are already connected; newly bound registries will see it, but
// existing registries are not retroactively notified (a real compositor
// would also broadcast wl_registry.global for late additions; this engine
// only adds globals at startup, so that path is unexercised).
func (r *Registry) Add(iface proto.Interface, version uint32, bind BindFunc) *Global {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextName++
	g := &Global{Name: r.nextName, Interface: iface, Version: version, Bind: bind}
	r.globals[g.Name] = g
	return g
}

// Remove retracts a global. Clients that already bound it keep a valid
// resource (§4.3); every live wl_registry is sent global_remove.
func (r *Registry) Remove(g *Global) {
	r.mu.Lock()
	if g.removed {
		r.mu.Unlock()
		return
	}
	g.removed = true
	delete(r.globals, g.Name)
	registries := make([]*objects.Resource, 0, len(r.registries))
	for reg := range r.registries {
		registries = append(registries, reg)
	}
	r.mu.Unlock()

	for _, reg := range registries {
		_ = reg.SendEvent(proto.RegistryEventGlobalRemove, wire.NewArgWriter().Uint32(g.Name))
	}
}

// Announce sends registry.global for every currently-advertised global to
// a freshly created wl_registry resource, and registers it to receive
// future global_remove broadcasts (§4.3: "the list is enumerated and each
// global announced").
func (r *Registry) Announce(registryResource *objects.Resource) {
	r.mu.Lock()
	globals := make([]*Global, 0, len(r.globals))
	for _, g := range r.globals {
		globals = append(globals, g)
	}
	r.registries[registryResource] = struct{}{}
	r.mu.Unlock()

	for _, g := range globals {
		_ = registryResource.SendEvent(proto.RegistryEventGlobal, wire.NewArgWriter().
			Uint32(g.Name).String(g.Interface.Name).Uint32(g.Version))
	}
}

// Forget removes a registry resource from the broadcast set; called from
// wl_registry's destructor.
func (r *Registry) Forget(registryResource *objects.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.registries, registryResource)
}

// Bind resolves a bind(name, id) request: looks up the global, clamps the
// version, and invokes its BindFunc.
func (r *Registry) Bind(client *objects.Client, name uint32, clientVersion uint32, id uint32) (*objects.Resource, error) {
	r.mu.Lock()
	g, ok := r.globals[name]
	r.mu.Unlock()
	if !ok {
		return nil, protoerr.New(1, protoerr.CodeInvalidObject, "no global with name %d", name)
	}
	version := clientVersion
	if version > g.Version {
		version = g.Version
	}
	return g.Bind(client, version, id)
}
