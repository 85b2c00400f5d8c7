package compositor

import (
	"github.com/wlhost/waycore/internal/objects"
	"github.com/wlhost/waycore/internal/proto"
	"github.com/wlhost/waycore/internal/protoerr"
	"github.com/wlhost/waycore/internal/shm"
	"github.com/wlhost/waycore/internal/surface"
	"github.com/wlhost/waycore/internal/wire"
)

func (d *Display) bindLinuxDmabuf(client *objects.Client, version uint32, id uint32) (*objects.Resource, error) {
	r, err := client.Create(proto.ZwpLinuxDmabufV1, version, id)
	if err != nil {
		return nil, err
	}
	ld := &linuxDmabufClient{}
	r.BindImplementation(ld, ld.dispatch, func(*objects.Resource) {})
	return r, nil
}

type linuxDmabufClient struct{}

func (ld *linuxDmabufClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.LinuxDmabufRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.LinuxDmabufRequestCreateParams:
		id, err := args.Object()
		if err != nil {
			return err
		}
		pr, err := r.Client().Create(proto.ZwpLinuxBufferParamsV1, r.Version(), id)
		if err != nil {
			return err
		}
		pc := &paramsClient{params: shm.NewParams()}
		pr.BindImplementation(pc, pc.dispatch, func(*objects.Resource) {})
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "zwp_linux_dmabuf_v1: unknown opcode %d", opcode)
	}
}

type paramsClient struct {
	params *shm.Params
}

func (pc *paramsClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.BufferParamsRequestDestroy:
		r.Client().Destroy(r)
		return nil
	case proto.BufferParamsRequestAdd:
		fd, err := args.Fd()
		if err != nil {
			return err
		}
		idx, err := args.Uint32()
		if err != nil {
			return err
		}
		offset, err := args.Uint32()
		if err != nil {
			return err
		}
		stride, err := args.Uint32()
		if err != nil {
			return err
		}
		modHi, err := args.Uint32()
		if err != nil {
			return err
		}
		modLo, err := args.Uint32()
		if err != nil {
			return err
		}
		modifier := uint64(modHi)<<32 | uint64(modLo)
		if err := pc.params.AddPlane(idx, fd, offset, stride, modifier); err != nil {
			return err
		}
		return nil
	case proto.BufferParamsRequestCreate:
		width, err := args.Int32()
		if err != nil {
			return err
		}
		height, err := args.Int32()
		if err != nil {
			return err
		}
		format, err := args.Uint32()
		if err != nil {
			return err
		}
		flags, err := args.Uint32()
		if err != nil {
			return err
		}
		dma, err := pc.params.Create(width, height, format, flags)
		if err != nil {
			_ = r.SendEvent(proto.BufferParamsEventFailed, wire.NewArgWriter())
			return nil
		}
		bufID := r.Client().AllocateServerID()
		br, err := r.Client().Create(proto.WlBuffer, 1, bufID)
		if err != nil {
			return err
		}
		rec := surface.NewBufferRecord(br, dma.Width, dma.Height)
		bc := &dmaBufferClient{dma: dma, rec: rec}
		br.BindImplementation(rec, bc.dispatch, bc.destroy)
		_ = r.SendEvent(proto.BufferParamsEventCreated, wire.NewArgWriter().Object(bufID))
		return nil
	case proto.BufferParamsRequestCreateImmed:
		bufID, err := args.Object()
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
		format, err := args.Uint32()
		if err != nil {
			return err
		}
		flags, err := args.Uint32()
		if err != nil {
			return err
		}
		dma, err := pc.params.Create(width, height, format, flags)
		if err != nil {
			return err
		}
		br, err := r.Client().Create(proto.WlBuffer, 1, bufID)
		if err != nil {
			return err
		}
		rec := surface.NewBufferRecord(br, dma.Width, dma.Height)
		bc := &dmaBufferClient{dma: dma, rec: rec}
		br.BindImplementation(rec, bc.dispatch, bc.destroy)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "zwp_linux_buffer_params_v1: unknown opcode %d", opcode)
	}
}

type dmaBufferClient struct {
	dma *shm.DmaBuffer
	rec *surface.BufferRecord
}

func (bc *dmaBufferClient) dispatch(r *objects.Resource, opcode uint16, args *wire.ArgReader) error {
	switch opcode {
	case proto.BufferRequestDestroy:
		r.Client().Destroy(r)
		return nil
	default:
		return protoerr.New(r.ID(), protoerr.CodeInvalidMethod, "wl_buffer: unknown opcode %d", opcode)
	}
}

func (bc *dmaBufferClient) destroy(*objects.Resource) {
	bc.rec.Sweep()
	for _, p := range bc.dma.Planes {
		_ = p.Fd // plane fds are owned by the client-side allocator; the core only accounted for them, matching §1 non-goals (no pixel/DMA ownership here)
	}
}
