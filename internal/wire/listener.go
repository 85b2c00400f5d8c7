package wire

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Listener accepts new client connections on the Unix socket named by
// §6 ("$XDG_RUNTIME_DIR/<name>", defaulting to "wayland-0"). If configured
// it also binds a TCP listening socket, but it has no accept method for
// it, so TCP connections are not served. A lock-file guards against a
// second compositor starting against the same display name.
type Listener struct {
	unixLn net.Listener
	tcpLn  net.Listener
	lock   *os.File

	socketPath string
	lockPath   string
}

// Listen binds the display's Unix socket (and, if tcpAddr is non-empty, a
// TCP listener) and acquires the display's lock-file.
func Listen(runtimeDir, name, tcpAddr string) (*Listener, error) {
	if runtimeDir == "" {
		return nil, fmt.Errorf("wire: XDG_RUNTIME_DIR is not set")
	}
	if name == "" {
		name = "wayland-0"
	}
	socketPath := filepath.Join(runtimeDir, name)
	lockPath := socketPath + ".lock"

	lock, err := acquireLock(lockPath)
	if err != nil {
		return nil, fmt.Errorf("wire: %s already in use: %w", name, err)
	}

	_ = os.Remove(socketPath)
	unixLn, err := net.Listen("unix", socketPath)
	if err != nil {
		lock.Close()
		return nil, fmt.Errorf("wire: listening on %s: %w", socketPath, err)
	}

	l := &Listener{unixLn: unixLn, lock: lock, socketPath: socketPath, lockPath: lockPath}

	if tcpAddr != "" {
		tcpLn, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("wire: listening on %s: %w", tcpAddr, err)
		}
		l.tcpLn = tcpLn
	}
	return l, nil
}

// acquireLock takes an exclusive, non-blocking flock on path, creating it
// if necessary. The lock is released (and the fd closed) when the display
// shuts down, per §6.
func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// SocketPath is the Unix socket path clients connect to.
func (l *Listener) SocketPath() string { return l.socketPath }

// AcceptUnix blocks for the next Unix-domain client connection.
func (l *Listener) AcceptUnix() (*net.UnixConn, error) {
	c, err := l.unixLn.Accept()
	if err != nil {
		return nil, err
	}
	return c.(*net.UnixConn), nil
}

// TCPListener is nil unless a TCP listener was configured (off by default,
// §6). The TCP path performs no authentication: anything that can reach
// the address can connect (DESIGN.md, Open Question 4).
func (l *Listener) TCPListener() net.Listener { return l.tcpLn }

// Close tears down both listeners, releases the lock, and removes the
// lock-file and socket from disk.
func (l *Listener) Close() error {
	if l.tcpLn != nil {
		l.tcpLn.Close()
	}
	if l.unixLn != nil {
		l.unixLn.Close()
	}
	if l.lock != nil {
		unix.Flock(int(l.lock.Fd()), unix.LOCK_UN)
		l.lock.Close()
		os.Remove(l.lockPath)
	}
	os.Remove(l.socketPath)
	return nil
}
