package shm

import "fmt"

// Buffer is a wl_buffer backed by an SHM pool: (pool-ref, offset, width,
// height, stride, format) per §3.1/§4.4.
type Buffer struct {
	pool   *Pool
	Offset int32
	Width  int32
	Height int32
	Stride int32
	Format Format

	destroyed bool
}

// NewBuffer validates the geometry preconditions of §4.4 and, on success,
// takes a reference on pool that is released by Destroy.
func NewBuffer(pool *Pool, offset, width, height, stride int32, format Format) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("shm: width and height must be positive, got %dx%d", width, height)
	}
	if offset < 0 {
		return nil, fmt.Errorf("shm: offset must be non-negative, got %d", offset)
	}
	bpp, ok := format.BytesPerPixel()
	if !ok {
		return nil, fmt.Errorf("shm: unsupported format %#x", uint32(format))
	}
	minStride := int64(width) * int64(bpp)
	if int64(stride) < minStride {
		return nil, fmt.Errorf("shm: stride %d smaller than width*bpp %d", stride, minStride)
	}
	extent := int64(offset) + int64(height)*int64(stride)
	if extent > pool.Size() {
		return nil, fmt.Errorf("shm: buffer extends to %d, beyond pool size %d", extent, pool.Size())
	}
	b := &Buffer{pool: pool, Offset: offset, Width: width, Height: height, Stride: stride, Format: format}
	pool.ref()
	pool.trackExtent(b, extent)
	return b, nil
}

// Pixels returns this buffer's slice of the pool's mapped memory.
func (b *Buffer) Pixels() []byte {
	data := b.pool.Bytes()
	end := int64(b.Offset) + int64(b.Height)*int64(b.Stride)
	if end > int64(len(data)) {
		return nil // pool was destroyed/truncated out from under a stale reference
	}
	return data[b.Offset:end]
}

// Destroy releases this buffer's pool reference. Safe to call once; the
// caller (internal/objects' destructor wiring) guarantees single-call.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.pool.forgetExtent(b)
	b.pool.unref()
}
