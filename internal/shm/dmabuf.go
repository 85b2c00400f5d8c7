package shm

import (
	"github.com/wlhost/waycore/internal/protoerr"
)

// Plane is one of a DMA-BUF buffer's 1-4 kernel-memory planes (§3.1, §4.4).
type Plane struct {
	Fd       int
	Offset   uint32
	Stride   uint32
	Modifier uint64
}

// Params is the single-use zwp_linux_buffer_params_v1 accumulator: it
// collects planes and then is "realized" into a DmaBuffer exactly once
// (§3.1, §4.4).
type Params struct {
	planes map[uint32]Plane
	used   bool
}

func NewParams() *Params {
	return &Params{planes: make(map[uint32]Plane)}
}

// AddPlane adds plane idx. Re-setting an index is PLANE_SET; adding after
// the accumulator has been consumed is ALREADY_USED (§4.4).
func (p *Params) AddPlane(idx uint32, fd int, offset, stride uint32, modifier uint64) error {
	if p.used {
		return protoerr.New(0, protoerr.CodeAlreadyUsed, "buffer params already used")
	}
	if _, exists := p.planes[idx]; exists {
		return protoerr.New(0, protoerr.CodePlaneSet, "plane %d already set", idx)
	}
	p.planes[idx] = Plane{Fd: fd, Offset: offset, Stride: stride, Modifier: modifier}
	return nil
}

// DmaBuffer is the realized, opaque-to-the-compositor result of a Params
// accumulator: the core records only geometry and plane descriptors and
// hands them to the external renderer, which alone interprets plane
// contents (§1 non-goals, §4.4).
type DmaBuffer struct {
	Width, Height int32
	Format        uint32
	Flags         uint32
	Planes        []Plane
}

// Create realizes the accumulator into a buffer. Zero planes is
// INCOMPLETE; non-positive dimensions is INVALID_DIMENSIONS; reuse after a
// prior Create is ALREADY_USED (§4.4).
func (p *Params) Create(width, height int32, format, flags uint32) (*DmaBuffer, error) {
	if p.used {
		return nil, protoerr.New(0, protoerr.CodeAlreadyUsed, "buffer params already used")
	}
	if len(p.planes) == 0 {
		return nil, protoerr.New(0, protoerr.CodeIncomplete, "no planes added")
	}
	if width <= 0 || height <= 0 {
		return nil, protoerr.New(0, protoerr.CodeInvalidDimensions, "invalid dimensions %dx%d", width, height)
	}
	p.used = true
	planes := make([]Plane, 0, len(p.planes))
	for i := uint32(0); i < uint32(len(p.planes)); i++ {
		pl, ok := p.planes[i]
		if !ok {
			return nil, protoerr.New(0, protoerr.CodeIncomplete, "plane indices must be contiguous from 0, missing %d", i)
		}
		planes = append(planes, pl)
	}
	return &DmaBuffer{Width: width, Height: height, Format: format, Flags: flags, Planes: planes}, nil
}
