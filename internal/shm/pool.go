package shm

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Pool is an mmap'd SHM region (§4.4). Its mapping outlives the wl_shm_pool
// resource: buffers created from it keep a reference, so destroying the
// pool resource only decrements the refcount (the duplicated fd is already
// closed once NewPool has mapped it) — the mapping itself persists until
// the last buffer releases it.
type Pool struct {
	mu   sync.Mutex
	data []byte
	size int64

	refcount int32 // 1 for the pool resource itself, +1 per live buffer

	// extents tracks each live buffer's (offset + height*stride), so Resize
	// can refuse to truncate memory a buffer still reads (§4.4).
	extents map[*Buffer]int64
}

// NewPool duplicates fd and maps size bytes read-write.
func NewPool(fd int, size int64) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: pool size must be positive, got %d", size)
	}
	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("shm: dup pool fd: %w", err)
	}
	data, err := unix.Mmap(dup, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	unix.Close(dup) // Mmap keeps its own reference via the mapping; the fd itself isn't needed after mapping.
	if err != nil {
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}
	return &Pool{data: data, size: size, refcount: 1, extents: make(map[*Buffer]int64)}, nil
}

func (p *Pool) Size() int64 { return p.size }

// Bytes returns the mapped region. Callers (the renderer collaborator, via
// a snapshot) must not retain slices past the buffer's Release.
func (p *Pool) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// Resize remaps the pool to newSize, which may be smaller than the current
// size. §4.4: fails (posted as INVALID_STRIDE) if an outstanding buffer
// would be truncated.
func (p *Pool) Resize(newSize int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var outstanding int64
	for _, extent := range p.extents {
		if extent > outstanding {
			outstanding = extent
		}
	}
	if newSize < p.size && newSize < outstanding {
		return fmt.Errorf("shm: resize to %d would truncate an outstanding buffer (needs %d)", newSize, outstanding)
	}
	data, err := unix.Mremap(p.data, int(newSize), unix.MREMAP_MAYMOVE)
	if err != nil {
		return fmt.Errorf("shm: mremap: %w", err)
	}
	p.data = data
	p.size = newSize
	return nil
}

// ref/unref implement the buffer-pinned refcount (§3.1, §4.4).
func (p *Pool) ref() { atomic.AddInt32(&p.refcount, 1) }

func (p *Pool) unref() {
	if atomic.AddInt32(&p.refcount, -1) == 0 {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.data != nil {
			unix.Munmap(p.data)
			p.data = nil
		}
	}
}

// Destroy drops the pool resource's own reference immediately; the mapping
// persists until every derived buffer has also released its reference
// (§4.4: "destroy drops the fd immediately and decrements the refcount").
func (p *Pool) Destroy() {
	p.unref()
}

func (p *Pool) trackExtent(b *Buffer, extent int64) {
	p.mu.Lock()
	p.extents[b] = extent
	p.mu.Unlock()
}

func (p *Pool) forgetExtent(b *Buffer) {
	p.mu.Lock()
	delete(p.extents, b)
	p.mu.Unlock()
}
