package shm

// Format is a wl_shm pixel format fourcc, reusing the teacher's constant
// table (honnef.co/go/libwayland's ShmFormat) rather than reinventing the
// encoding.
type Format uint32

const (
	FormatArgb8888 Format = 0
	FormatXrgb8888 Format = 1
	FormatAbgr8888 Format = 0x34324241
	FormatXbgr8888 Format = 0x34324258
	FormatRgb565   Format = 0x36314752
)

// BytesPerPixel returns the pixel stride unit §4.4's stride precondition is
// checked against. Formats outside this small set are rejected (the
// wl_shm_pool handler posts INVALID_FORMAT) rather than guessed at — the
// core doesn't interpret pixel contents, only validates the buffer
// geometry math (§1 non-goals).
func (f Format) BytesPerPixel() (int, bool) {
	switch f {
	case FormatArgb8888, FormatXrgb8888, FormatAbgr8888, FormatXbgr8888:
		return 4, true
	case FormatRgb565:
		return 2, true
	default:
		return 0, false
	}
}
