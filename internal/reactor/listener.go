package reactor

import (
	"fmt"
	"net"
	"syscall"
)

// listenBacklog is the kernel's pending-connection backlog, independent of
// MaxConnections (which bounds C1, not the accept queue).
const listenBacklog = 1024

// newListener creates, binds and listens on a non-blocking raw socket for
// addr ("host:port"). Address parsing is delegated to net.ResolveTCPAddr;
// the socket itself is raw so the reactor holds the fd directly rather
// than a net.Listener, matching the rest of the I/O path.
func newListener(addr string) (int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, err
	}

	domain := syscall.AF_INET
	if tcpAddr.IP != nil && tcpAddr.IP.To4() == nil {
		domain = syscall.AF_INET6
	}

	fd, err := syscall.Socket(domain, syscall.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
		syscall.Close(fd)
		return -1, err
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		syscall.Close(fd)
		return -1, err
	}

	var sa syscall.Sockaddr
	if domain == syscall.AF_INET {
		var a [4]byte
		if ip4 := tcpAddr.IP.To4(); ip4 != nil {
			copy(a[:], ip4)
		}
		sa = &syscall.SockaddrInet4{Port: tcpAddr.Port, Addr: a}
	} else {
		var a [16]byte
		copy(a[:], tcpAddr.IP.To16())
		sa = &syscall.SockaddrInet6{Port: tcpAddr.Port, Addr: a}
	}

	if err := syscall.Bind(fd, sa); err != nil {
		syscall.Close(fd)
		return -1, err
	}
	if err := syscall.Listen(fd, listenBacklog); err != nil {
		syscall.Close(fd)
		return -1, err
	}
	return fd, nil
}

// sockname reports a loopback "host:port" (127.0.0.1 or [::1]) carrying
// the port a listening fd is actually bound to, which differs from the
// configured port when it was 0 (OS-assigned, used by tests so concurrent
// runs don't collide).
func sockname(fd int) (string, error) {
	sa, err := syscall.Getsockname(fd)
	if err != nil {
		return "", err
	}
	switch a := sa.(type) {
	case *syscall.SockaddrInet4:
		return fmt.Sprintf("127.0.0.1:%d", a.Port), nil
	case *syscall.SockaddrInet6:
		return fmt.Sprintf("[::1]:%d", a.Port), nil
	default:
		return "", fmt.Errorf("reactor: unsupported sockaddr type %T", sa)
	}
}
