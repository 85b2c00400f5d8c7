// Package proto holds the hand-written subset of Wayland interface
// descriptors and opcode tables the engine needs — no code generation, the
// same choice the teacher library documents for itself ("Only the subset
// of client API needed ... has been bound. No thought has been given to
// code generation").
package proto

// Interface names the wire interface and the highest version this engine
// implements for it. Binding a global clamps the client's requested
// version to min(requested, Version) per §4.3.
type Interface struct {
	Name    string
	Version uint32
}

var (
	WlDisplay    = Interface{"wl_display", 1}
	WlRegistry   = Interface{"wl_registry", 1}
	WlCallback   = Interface{"wl_callback", 1}
	WlCompositor = Interface{"wl_compositor", 4}
	WlSurface    = Interface{"wl_surface", 6}
	WlRegion     = Interface{"wl_region", 1}

	WlSubcompositor = Interface{"wl_subcompositor", 1}
	WlSubsurface    = Interface{"wl_subsurface", 1}

	WlShm     = Interface{"wl_shm", 1}
	WlShmPool = Interface{"wl_shm_pool", 1}
	WlBuffer  = Interface{"wl_buffer", 1}

	WlSeat     = Interface{"wl_seat", 7}
	WlPointer  = Interface{"wl_pointer", 7}
	WlKeyboard = Interface{"wl_keyboard", 7}
	WlTouch    = Interface{"wl_touch", 7}

	WlOutput = Interface{"wl_output", 3}

	WlDataDeviceManager = Interface{"wl_data_device_manager", 3}
	WlDataDevice        = Interface{"wl_data_device", 3}
	WlDataSource        = Interface{"wl_data_source", 3}
	WlDataOffer         = Interface{"wl_data_offer", 3}

	XdgWmBase       = Interface{"xdg_wm_base", 4}
	XdgPositioner   = Interface{"xdg_positioner", 4}
	XdgSurface      = Interface{"xdg_surface", 4}
	XdgToplevel     = Interface{"xdg_toplevel", 4}
	XdgPopup        = Interface{"xdg_popup", 4}

	ZxdgDecorationManagerV1  = Interface{"zxdg_decoration_manager_v1", 1}
	ZxdgToplevelDecorationV1 = Interface{"zxdg_toplevel_decoration_v1", 1}

	ZwpLinuxDmabufV1        = Interface{"zwp_linux_dmabuf_v1", 4}
	ZwpLinuxBufferParamsV1  = Interface{"zwp_linux_buffer_params_v1", 4}

	WpViewporter = Interface{"wp_viewporter", 2}
	WpViewport   = Interface{"wp_viewport", 2}

	// Stub-only globals (internal/stubglobals): advertised so probing
	// clients don't treat their absence as fatal, but implement no
	// meaningful requests (§1 "optional protocol stubs").
	GtkShell1                         = Interface{"gtk_shell1", 1}
	OrgKdePlasmaShell                 = Interface{"org_kde_plasma_shell", 1}
	ZwpIdleInhibitManagerV1           = Interface{"zwp_idle_inhibit_manager_v1", 1}
	ZwpPointerGesturesV1              = Interface{"zwp_pointer_gestures_v1", 3}
	ZwpPointerConstraintsV1           = Interface{"zwp_pointer_constraints_v1", 1}
	ZwpRelativePointerManagerV1       = Interface{"zwp_relative_pointer_manager_v1", 1}
	ZwpPrimarySelectionDeviceManagerV1 = Interface{"zwp_primary_selection_device_manager_v1", 1}
	ZwpScreencopyManagerV1            = Interface{"zwp_screencopy_manager_v1", 3}
)
