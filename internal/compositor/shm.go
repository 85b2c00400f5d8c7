package compositor

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/shm"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

var advertisedShmFormats = []shm.Format{
	shm.FormatArgb8888, shm.FormatXrgb8888, shm.FormatAbgr8888, shm.FormatXbgr8888, shm.FormatRgb565,
}

func (d *Display) bindShm(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
	r, err := client.Create(proto.WlShm, version, id)
	if err != nil {
		return nil, err
	}
	s := &shmClient{}
	r.BindImplementation(s, s.dispatch, func(*objects.Resource) {})
	for _, f := range advertisedShmFormats {
		_ = r.SendEvent(proto.ShmEventFormat, wire.NewArgWriter().Uint32(uint32(f)))
	}
	return r, nil
}

type shmClient struct{}

func (s *shmClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.ShmRequestCreatePool:
		id, err := args.Object()
		if err != nil {
			return err
		}
		fd, err := args.Fd()
		if err != nil {
			return err
		}
		size, err := args.Int32()
		if err != nil {
			return err
		}
		pool, err := shm.NewPool(fd, int64(size))
		if err != nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidFd, "%s", err)
		}
		pr, err := r.Client().Create(proto.WlShmPool, 1, id)
		if err != nil {
			return err
		}
		pc := &poolClient{pool: pool}
		pr.BindImplementation(pc, pc.dispatch, pc.destroy)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_shm: unknown opcode %d", opcode)
	}
}

type poolClient struct {
	pool *shm.Pool
}

func (pc *poolClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.ShmPoolRequestCreateBuffer:
		id, err := args.Object()
		if err != nil {
			return err
		}
		offset, err := args.Int32()
		if err != nil {
			return err
		}
		width, err := args.Int32()
		if err != nil {
			return err
		}
		height, err := args.Int32()
		if err != nil {
			return err
		}
		stride, err := args.Int32()
		if err != nil {
			return err
		}
		format, err := args.Uint32()
		if err != nil {
			return err
		}
		if _, ok := shm.Format(format).BytesPerPixel(); !ok {
			return protoerr.New(r.ID(), protoerr.CodeInvalidFormat, "wl_shm_pool: unsupported format %#x", format)
		}
		buf, err := shm.NewBuffer(pc.pool, offset, width, height, stride, shm.Format(format))
		if err != nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidStride, "%s", err)
		}
		br, err := r.Client().Create(proto.WlBuffer, 1, id)
		if err != nil {
			return err
		}
		rec := surface.NewBufferRecord(br, width, height)
		bc := &bufferClient{shmBuf: buf, rec: rec}
		br.BindImplementation(rec, bc.dispatch, bc.destroy)
		return nil
	case proto.ShmPoolRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.ShmPoolRequestResize:
		size, err := args.Int32()
		if err != nil {
			return err
		}
		if err := pc.pool.Resize(int64(size)); err != nil {
			return protoerr.New(r.ID(), protoerr.CodeInvalidStride, "%s", err)
		}
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_shm_pool: unknown opcode %d", opcode)
	}
}

func (pc *poolClient) destroy(*objects.Resource) {
	pc.pool.Destroy()
}

// bufferClient binds a wl_buffer resource to its SHM-backed storage and the
// surface-reference bookkeeping in internal/surface (§4.4).
type bufferClient struct {
	shmBuf *shm.Buffer
	rec    *surface.BufferRecord
}

func (bc *bufferClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.BufferRequestDestroy:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_buffer: unknown opcode %d", opcode)
	}
}

func (bc *bufferClient) destroy(*objects.Resource) {
	bc.rec.Sweep()
	bc.shmBuf.Destroy()
}
