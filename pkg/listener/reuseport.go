// Package listener implements the zero-downtime listener supervisor
// (spec.md §4.7): port-sharing socket creation, a fresh accept loop on every
// restart, and a bounded drain of the outgoing listener's in-flight
// connections.
package listener

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen binds a TCP listener configured for port sharing (SO_REUSEPORT) and
// address reuse (SO_REUSEADDR), so a new listener may be brought up on the
// same (host, port) while the outgoing one is still draining. Grounded on
// original_source/src/server/listener.rs's create_reusable_listener, which
// uses the socket2 crate for the same two socket options; golang.org/x/sys
// is the Go ecosystem's equivalent low-level socket-option surface.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = setReusable(int(fd))
			}); err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.Listen(ctx, "tcp", addr)
}

func setReusable(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return err
	}
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}
