//go:build darwin

package socktune

import "syscall"

// Darwin-specific socket option values not named in the standard syscall
// package; from <netinet/tcp.h> and <sys/socket.h>.
const (
	tcpFastOpenDarwin = 0x105
	tcpKeepAlive      = 0x10
	soNoSigPipe       = 0x1022
)

func applyConn(fd int, cfg Config) error {
	if cfg.NoDelay {
		if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
			return err
		}
	}
	if cfg.RecvBuffer > 0 {
		_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_RCVBUF, cfg.RecvBuffer)
	}
	if cfg.SendBuffer > 0 {
		_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_SNDBUF, cfg.SendBuffer)
	}
	_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, soNoSigPipe, 1)
	if cfg.KeepAlive {
		_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpKeepAlive, int(keepaliveIdle.Seconds()))
	}
	return nil
}

func applyListener(fd int, cfg Config) error {
	if !cfg.FastOpen {
		return nil
	}
	return syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpFastOpenDarwin, 256)
}

// refreshQuickAck is a no-op on Darwin: there is no TCP_QUICKACK
// equivalent. Kept so callers don't need a build-tagged call site.
func refreshQuickAck(fd int) error {
	return nil
}
