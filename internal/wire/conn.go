package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// HighWatermark is the outbound threshold of the backpressure contract of
// §4.1. WriteMessage does not block on it: each write goes straight to the
// kernel, and Pending only counts the bytes of writes in progress. The
// dispatch loop (internal/compositor) compares Pending against
// HighWatermark and disconnects a client that stays above it for longer
// than the stall timeout.
const HighWatermark = 4 << 20 // 4 MiB of unflushed outbound messages

// Conn frames Wayland wire messages over a single Unix-domain stream
// connection, duplicating incoming fds into owned handles (§4.1) and
// retaining outgoing fds until the kernel has accepted them.
type Conn struct {
	file *net.UnixConn
	raw  int // duplicated raw fd, owned by Conn, used for Sendmsg/Recvmsg

	writeMu sync.Mutex
	pending int // bytes queued but not yet handed to the kernel

	readBuf []byte
}

// NewConn takes ownership of c; c must be a *net.UnixConn (a local stream
// socket, per §6) so ancillary SCM_RIGHTS data can ride alongside payload
// bytes.
func NewConn(c *net.UnixConn) (*Conn, error) {
	sc, err := c.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("wire: obtaining raw conn: %w", err)
	}
	var raw int
	var dupErr error
	err = sc.Control(func(fd uintptr) {
		raw, dupErr = unix.Dup(int(fd))
	})
	if err != nil {
		return nil, err
	}
	if dupErr != nil {
		return nil, fmt.Errorf("wire: dup socket fd: %w", dupErr)
	}
	return &Conn{file: c, raw: raw}, nil
}

// Fd is the duplicated raw descriptor Conn uses for Sendmsg/Recvmsg. The
// dispatch loop does not poll it; it reads with blocking ReadMessage calls.
func (c *Conn) Fd() int { return c.raw }

// Pending reports how many bytes are presently queued for this connection;
// the dispatch loop compares this against HighWatermark.
func (c *Conn) Pending() int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.pending
}

// ReadMessage blocks until one full wire message, plus any fds sent
// alongside it, has been received.
func (c *Conn) ReadMessage() (Message, error) {
	var hdrBuf [headerSize]byte
	fds, err := c.readFull(hdrBuf[:], true)
	if err != nil {
		return Message{}, err
	}
	h := decodeHeader(hdrBuf)
	if h.Length < headerSize {
		return Message{}, fmt.Errorf("wire: message length %d shorter than header", h.Length)
	}
	argLen := int(h.Length) - headerSize
	args := make([]byte, argLen)
	moreFds, err := c.readFull(args, false)
	if err != nil {
		return Message{}, err
	}
	fds = append(fds, moreFds...)
	return Message{Sender: h.Sender, Opcode: h.Opcode, Length: h.Length, Args: args, Fds: fds}, nil
}

// readFull reads len(buf) bytes, collecting any ancillary fds seen along
// the way. wantFds is not consulted: control data is parsed on both the
// header read and the payload read.
func (c *Conn) readFull(buf []byte, wantFds bool) ([]int, error) {
	var fds []int
	off := 0
	oob := make([]byte, unix.CmsgSpace(4*MaxFds))
	for off < len(buf) {
		n, oobn, _, _, err := unix.Recvmsg(c.raw, buf[off:], oob, 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, err
		}
		if n == 0 {
			return nil, io.EOF
		}
		off += n
		if oobn > 0 {
			cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
			if err == nil {
				for _, cmsg := range cmsgs {
					rights, err := unix.ParseUnixRights(&cmsg)
					if err == nil {
						fds = append(fds, rights...)
					}
				}
			}
		}
	}
	_ = wantFds
	return fds, nil
}

// WriteMessage sends one wire message, with any attached fds as SCM_RIGHTS
// ancillary data (§4.1: "retains ownership of outgoing fds until the
// kernel reports them sent").
func (c *Conn) WriteMessage(m Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	hdr := encodeHeader(header{Sender: m.Sender, Opcode: m.Opcode, Length: m.Length})
	buf := append(hdr[:], m.Args...)

	var oob []byte
	if len(m.Fds) > 0 {
		oob = unix.UnixRights(m.Fds...)
	}

	c.pending += len(buf)
	defer func() { c.pending -= len(buf) }()

	off := 0
	for off < len(buf) {
		n, err := unix.SendmsgN(c.raw, buf[off:], oob, nil, 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		off += n
		oob = nil // only attach ancillary data to the first send
	}
	return nil
}

// Close releases the duplicated fd. The caller's original net.UnixConn is
// closed separately.
func (c *Conn) Close() error {
	return unix.Close(c.raw)
}
