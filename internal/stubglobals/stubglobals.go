// Package stubglobals implements the "advertise but do nothing
// interesting" protocol globals (§9, supplemented): gtk_shell1,
// org_kde_plasma_shell, idle-inhibit, pointer-gestures, pointer-
// constraints, the relative-pointer manager, the primary-selection device
// manager, and screencopy. Each merely exists so a probing client doesn't
// treat the absence of an optional extension as fatal.
package stubglobals

import (
	"github.com/wlhost/waycore/internal/globalreg"
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/wire"
)

// Bind returns a BindFunc that creates a resource implementing iface which
// accepts any request without interpreting its arguments and never emits
// events. destroyOpcode is the request number that should reclaim the
// resource's id (by protocol convention this is always the interface's
// lowest-numbered request, typically 0).
func Bind(iface proto.Interface, destroyOpcode uint16) globalreg.BindFunc {
	return func(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
		r, err := client.Create(iface, version, id)
		if err != nil {
			return nil, err
		}
		r.BindImplementation(nil, func(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
			args.SkipAll()
			if opcode == destroyOpcode {
				r.Client().Destroy(r)
			}
			return nil
		}, func(*objects.Resource) {})
		return r, nil
	}
}

// RegisterAll advertises every stub global on reg.
func RegisterAll(reg *globalreg.Registry) {
	for _, iface := range []proto.Interface{
		proto.GtkShell1,
		proto.OrgKdePlasmaShell,
		proto.ZwpIdleInhibitManagerV1,
		proto.ZwpPointerGesturesV1,
		proto.ZwpPointerConstraintsV1,
		proto.ZwpRelativePointerManagerV1,
		proto.ZwpPrimarySelectionDeviceManagerV1,
		proto.ZwpScreencopyManagerV1,
	} {
		reg.Add(iface, iface.Version, Bind(iface, 0))
	}
}
