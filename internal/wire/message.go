package wire

import (
	"encoding/binary"
	"fmt"

	"honnef.co/go/safeish"
)

const headerSize = 8

// MaxFds is the cap on ancillary file descriptors carried by one message
// (§6: "up to 28 fds per message via SCM_RIGHTS").
const MaxFds = 28

// Message is a single decoded wire message: (sender-id, opcode,
// length-in-bytes, payload), plus any file descriptors the transport
// received alongside it (§4.1).
type Message struct {
	Sender uint32
	Opcode uint16
	Length uint16
	Args   []byte
	Fds    []int
}

// header is the decoded (sender-id, opcode, length) triple every wire
// message starts with.
type header struct {
	Sender uint32
	Opcode uint16
	Length uint16
}

func decodeHeader(buf [headerSize]byte) header {
	return header{
		Sender: binary.LittleEndian.Uint32(buf[0:4]),
		Opcode: binary.LittleEndian.Uint16(buf[4:6]),
		Length: binary.LittleEndian.Uint16(buf[6:8]),
	}
}

func encodeHeader(h header) [headerSize]byte {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Sender)
	binary.LittleEndian.PutUint16(buf[4:6], h.Opcode)
	binary.LittleEndian.PutUint16(buf[6:8], h.Length)
	return buf
}

// ArgWriter accumulates a request/event's argument payload in wire order.
// Every interface handler in internal/objects' callers builds one of these
// per outbound message; padding and string/array framing are handled once
// here instead of at each call site.
type ArgWriter struct {
	buf []byte
	fds []int
}

func NewArgWriter() *ArgWriter {
	return &ArgWriter{}
}

func (w *ArgWriter) Uint32(v uint32) *ArgWriter {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *ArgWriter) Int32(v int32) *ArgWriter { return w.Uint32(uint32(v)) }

func (w *ArgWriter) Fixed(v Fixed) *ArgWriter { return w.Uint32(uint32(v)) }

// Object writes a new_id/object argument: 0 means "no object".
func (w *ArgWriter) Object(id uint32) *ArgWriter { return w.Uint32(id) }

func (w *ArgWriter) String(s string) *ArgWriter {
	n := uint32(len(s) + 1) // +1 for the NUL terminator
	w.Uint32(n)
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
	w.pad()
	return w
}

func (w *ArgWriter) Array(b []byte) *ArgWriter {
	w.Uint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
	w.pad()
	return w
}

// Fd hands an fd to be sent out-of-band alongside this message; it does not
// contribute bytes to the payload.
func (w *ArgWriter) Fd(fd int) *ArgWriter {
	w.fds = append(w.fds, fd)
	return w
}

func (w *ArgWriter) pad() {
	if r := len(w.buf) % 4; r != 0 {
		w.buf = append(w.buf, make([]byte, 4-r)...)
	}
}

// Build finalizes the message for sender/opcode.
func (w *ArgWriter) Build(sender uint32, opcode uint16) Message {
	if len(w.buf)+headerSize > 0xffff {
		panic("wire: message exceeds maximum wayland message size")
	}
	return Message{
		Sender: sender,
		Opcode: opcode,
		Length: uint16(len(w.buf) + headerSize),
		Args:   w.buf,
		Fds:    w.fds,
	}
}

// ArgReader walks a decoded message's payload argument-by-argument. Readers
// are built fresh per dispatched message in internal/objects; an overrun or
// malformed string/array surfaces as a protocol error rather than a panic,
// since an attacker-controlled client drives this directly.
type ArgReader struct {
	buf []byte
	fds []int
	pos int
}

func NewArgReader(m Message) *ArgReader {
	return &ArgReader{buf: m.Args, fds: m.Fds}
}

func (r *ArgReader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("wire: short message: need %d more bytes at offset %d, have %d", n, r.pos, len(r.buf))
	}
	return nil
}

func (r *ArgReader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *ArgReader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *ArgReader) Fixed() (Fixed, error) {
	v, err := r.Uint32()
	return Fixed(v), err
}

func (r *ArgReader) Object() (uint32, error) { return r.Uint32() }

func (r *ArgReader) String() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("wire: zero-length string argument")
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)-1]) // drop NUL
	r.pos += int(n)
	r.skipPad()
	return s, nil
}

func (r *ArgReader) Array() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	r.skipPad()
	return out, nil
}

// Fd consumes the next ancillary fd sent with this message.
func (r *ArgReader) Fd() (int, error) {
	if len(r.fds) == 0 {
		return -1, fmt.Errorf("wire: expected an fd argument, none remain")
	}
	fd := r.fds[0]
	r.fds = r.fds[1:]
	return fd, nil
}

func (r *ArgReader) skipPad() {
	if rem := r.pos % 4; rem != 0 {
		r.pos += 4 - rem
	}
}

// SkipAll consumes every remaining byte without interpreting it. Used by
// intentionally minimal stub implementations that accept a request's
// existence without needing its argument shapes (§9, protocol stubs).
func (r *ArgReader) SkipAll() {
	r.pos = len(r.buf)
}

// Done reports whether every byte of the payload has been consumed; callers
// treat leftover bytes as a protocol error (an over-long message).
func (r *ArgReader) Done() bool {
	return r.pos == len(r.buf)
}

// ArrayUint32 reads the next array argument and reinterprets its bytes as a
// []uint32 in place, the same trick the teacher's dispatcher uses (via
// safeish) to hand keymap/pressed-key arrays to callers without an extra
// copy-and-convert pass.
func (r *ArgReader) ArrayUint32() ([]uint32, error) {
	raw, err := r.Array()
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("wire: array argument length %d not a multiple of 4", len(raw))
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return safeish.Cast[[]uint32](raw)[: len(raw)/4 : len(raw)/4], nil
}
