package proto

// Opcode constants below are grouped by interface and split into Request
// (client → server) and Event (server → client) blocks, matching the
// numbering of the upstream protocol XML. Comments name the request/event
// so a handler switch reads like the protocol spec rather than a bare
// number.

// wl_display
const (
	DisplayRequestSync       uint16 = 0 // sync(callback: new_id<wl_callback>)
	DisplayRequestGetRegistry uint16 = 1 // get_registry(registry: new_id<wl_registry>)
)

const (
	DisplayEventError    uint16 = 0 // error(object_id, code, message)
	DisplayEventDeleteID uint16 = 1 // delete_id(id)
)

// wl_registry
const (
	RegistryRequestBind uint16 = 0 // bind(name, id: new_id)
)

const (
	RegistryEventGlobal       uint16 = 0 // global(name, interface, version)
	RegistryEventGlobalRemove uint16 = 1 // global_remove(name)
)

// wl_callback
const (
	CallbackEventDone uint16 = 0 // done(callback_data)
)

// wl_compositor
const (
	CompositorRequestCreateSurface    uint16 = 0
	CompositorRequestCreateRegion     uint16 = 1
)

// wl_region
const (
	RegionRequestDestroy uint16 = 0
	RegionRequestAdd     uint16 = 1
	RegionRequestSubtract uint16 = 2
)

// wl_surface
const (
	SurfaceRequestDestroy            uint16 = 0
	SurfaceRequestAttach             uint16 = 1
	SurfaceRequestDamage              uint16 = 2
	SurfaceRequestFrame              uint16 = 3
	SurfaceRequestSetOpaqueRegion     uint16 = 4
	SurfaceRequestSetInputRegion      uint16 = 5
	SurfaceRequestCommit              uint16 = 6
	SurfaceRequestSetBufferTransform  uint16 = 7
	SurfaceRequestSetBufferScale      uint16 = 8
	SurfaceRequestDamageBuffer        uint16 = 9
	SurfaceRequestOffset              uint16 = 10
)

const (
	SurfaceEventEnter                 uint16 = 0
	SurfaceEventLeave                 uint16 = 1
	SurfaceEventPreferredBufferScale  uint16 = 2
	SurfaceEventPreferredBufferTransform uint16 = 3
)

// wl_subcompositor
const (
	SubcompositorRequestDestroy       uint16 = 0
	SubcompositorRequestGetSubsurface uint16 = 1
)

// wl_subsurface
const (
	SubsurfaceRequestDestroy        uint16 = 0
	SubsurfaceRequestSetPosition    uint16 = 1
	SubsurfaceRequestPlaceAbove     uint16 = 2
	SubsurfaceRequestPlaceBelow     uint16 = 3
	SubsurfaceRequestSetSync        uint16 = 4
	SubsurfaceRequestSetDesync      uint16 = 5
)

// wl_shm
const (
	ShmRequestCreatePool uint16 = 0
)

const (
	ShmEventFormat uint16 = 0
)

// wl_shm_pool
const (
	ShmPoolRequestCreateBuffer uint16 = 0
	ShmPoolRequestDestroy      uint16 = 1
	ShmPoolRequestResize       uint16 = 2
)

// wl_buffer
const (
	BufferRequestDestroy uint16 = 0
)

const (
	BufferEventRelease uint16 = 0
)

// wl_seat
const (
	SeatRequestGetPointer  uint16 = 0
	SeatRequestGetKeyboard uint16 = 1
	SeatRequestGetTouch    uint16 = 2
	SeatRequestRelease     uint16 = 3
)

const (
	SeatEventCapabilities uint16 = 0
	SeatEventName         uint16 = 1
)

// wl_pointer
const (
	PointerRequestSetCursor uint16 = 0
	PointerRequestRelease   uint16 = 1
)

const (
	PointerEventEnter      uint16 = 0
	PointerEventLeave      uint16 = 1
	PointerEventMotion     uint16 = 2
	PointerEventButton     uint16 = 3
	PointerEventAxis       uint16 = 4
	PointerEventFrame      uint16 = 5
	PointerEventAxisSource uint16 = 6
	PointerEventAxisStop   uint16 = 7
)

// wl_keyboard
const (
	KeyboardRequestRelease uint16 = 0
)

const (
	KeyboardEventKeymap     uint16 = 0
	KeyboardEventEnter      uint16 = 1
	KeyboardEventLeave      uint16 = 2
	KeyboardEventKey        uint16 = 3
	KeyboardEventModifiers  uint16 = 4
	KeyboardEventRepeatInfo uint16 = 5
)

// wl_touch
const (
	TouchRequestRelease uint16 = 0
)

const (
	TouchEventDown   uint16 = 0
	TouchEventUp     uint16 = 1
	TouchEventMotion uint16 = 2
	TouchEventFrame  uint16 = 3
	TouchEventCancel uint16 = 4
)

// wl_output
const (
	OutputRequestRelease uint16 = 0
)

const (
	OutputEventGeometry uint16 = 0
	OutputEventMode     uint16 = 1
	OutputEventDone     uint16 = 2
	OutputEventScale    uint16 = 3
)

// wl_data_device_manager
const (
	DataDeviceManagerRequestCreateDataSource uint16 = 0
	DataDeviceManagerRequestGetDataDevice    uint16 = 1
)

// wl_data_device
const (
	DataDeviceRequestStartDrag    uint16 = 0
	DataDeviceRequestSetSelection uint16 = 1
	DataDeviceRequestRelease      uint16 = 2
)

const (
	DataDeviceEventDataOffer uint16 = 0
	DataDeviceEventSelection uint16 = 5
)

// xdg_wm_base
const (
	WmBaseRequestDestroy          uint16 = 0
	WmBaseRequestCreatePositioner uint16 = 1
	WmBaseRequestGetXdgSurface    uint16 = 2
	WmBaseRequestPong             uint16 = 3
)

const (
	WmBaseEventPing uint16 = 0
)

// xdg_surface
const (
	XdgSurfaceRequestDestroy            uint16 = 0
	XdgSurfaceRequestGetToplevel        uint16 = 1
	XdgSurfaceRequestGetPopup           uint16 = 2
	XdgSurfaceRequestSetWindowGeometry   uint16 = 3
	XdgSurfaceRequestAckConfigure        uint16 = 4
)

const (
	XdgSurfaceEventConfigure uint16 = 0
)

// xdg_toplevel
const (
	ToplevelRequestDestroy         uint16 = 0
	ToplevelRequestSetParent       uint16 = 1
	ToplevelRequestSetTitle        uint16 = 2
	ToplevelRequestSetAppID        uint16 = 3
	ToplevelRequestShowWindowMenu  uint16 = 4
	ToplevelRequestMove            uint16 = 5
	ToplevelRequestResize          uint16 = 6
	ToplevelRequestSetMaxSize      uint16 = 7
	ToplevelRequestSetMinSize      uint16 = 8
	ToplevelRequestSetMaximized    uint16 = 9
	ToplevelRequestUnsetMaximized  uint16 = 10
	ToplevelRequestSetFullscreen   uint16 = 11
	ToplevelRequestUnsetFullscreen uint16 = 12
	ToplevelRequestSetMinimized    uint16 = 13
)

const (
	ToplevelEventConfigure      uint16 = 0
	ToplevelEventClose          uint16 = 1
	ToplevelEventConfigureBounds uint16 = 2
	ToplevelEventWmCapabilities  uint16 = 3
)

// xdg_popup
const (
	PopupRequestDestroy uint16 = 0
	PopupRequestGrab    uint16 = 1
	PopupRequestReposition uint16 = 2
)

const (
	PopupEventConfigure     uint16 = 0
	PopupEventPopupDone     uint16 = 1
	PopupEventRepositioned  uint16 = 2
)

// xdg_positioner
const (
	PositionerRequestDestroy               uint16 = 0
	PositionerRequestSetSize               uint16 = 1
	PositionerRequestSetAnchorRect         uint16 = 2
	PositionerRequestSetAnchor             uint16 = 3
	PositionerRequestSetGravity            uint16 = 4
	PositionerRequestSetConstraintAdjustment uint16 = 5
	PositionerRequestSetOffset             uint16 = 6
)

// zxdg_decoration_manager_v1
const (
	DecorationManagerRequestDestroy              uint16 = 0
	DecorationManagerRequestGetToplevelDecoration uint16 = 1
)

// zxdg_toplevel_decoration_v1
const (
	ToplevelDecorationRequestDestroy uint16 = 0
	ToplevelDecorationRequestSetMode uint16 = 1
	ToplevelDecorationRequestUnsetMode uint16 = 2
)

const (
	ToplevelDecorationEventConfigure uint16 = 0
)

// zwp_linux_dmabuf_v1
const (
	LinuxDmabufRequestDestroy          uint16 = 0
	LinuxDmabufRequestCreateParams     uint16 = 1
)

// zwp_linux_buffer_params_v1
const (
	BufferParamsRequestDestroy     uint16 = 0
	BufferParamsRequestAdd         uint16 = 1
	BufferParamsRequestCreate      uint16 = 2
	BufferParamsRequestCreateImmed uint16 = 3
)

const (
	BufferParamsEventCreated uint16 = 0
	BufferParamsEventFailed  uint16 = 1
)

// wp_viewporter
const (
	ViewporterRequestDestroy       uint16 = 0
	ViewporterRequestGetViewport   uint16 = 1
)

// wp_viewport
const (
	ViewportRequestDestroy        uint16 = 0
	ViewportRequestSetSource      uint16 = 1
	ViewportRequestSetDestination uint16 = 2
)
