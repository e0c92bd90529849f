// Package socktune applies socket-level performance tuning to listener and
// connection file descriptors, taking the raw fd directly rather than
// unwrapping a net.Conn/net.Listener (this reactor never holds either).
// TCP_NODELAY failing is returned to the caller as critical; every other
// option is applied best-effort.
package socktune

import "time"

// Config is the set of per-OS socket tunables this package can apply.
type Config struct {
	NoDelay     bool
	RecvBuffer  int
	SendBuffer  int
	QuickAck    bool
	DeferAccept bool
	FastOpen    bool
	KeepAlive   bool
}

// Default returns the recommended configuration for an HTTP static-file
// workload: low latency for the header write, high throughput for the
// sendfile burst that follows.
func Default(socketBufferBytes int) Config {
	if socketBufferBytes <= 0 {
		socketBufferBytes = 256 * 1024
	}
	return Config{
		NoDelay:     true,
		RecvBuffer:  socketBufferBytes,
		SendBuffer:  socketBufferBytes,
		QuickAck:    true,
		DeferAccept: true,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// keepaliveIdle, keepaliveInterval and keepaliveCount are the timings
// applied when Config.KeepAlive is set (60s idle, 10s interval, 3 probes).
const (
	keepaliveIdle     = 60 * time.Second
	keepaliveInterval = 10 * time.Second
	keepaliveCount    = 3
)

// Apply tunes an accepted connection's fd. TCP_NODELAY failures are
// returned (critical for HTTP latency); every other option is best-effort.
func Apply(fd int, cfg Config) error {
	return applyConn(fd, cfg)
}

// ApplyListener tunes the listening socket's fd (TCP_DEFER_ACCEPT,
// TCP_FASTOPEN) before the reactor starts accepting.
func ApplyListener(fd int, cfg Config) error {
	return applyListener(fd, cfg)
}

// RefreshQuickAck re-applies TCP_QUICKACK after a read, since the kernel
// clears it once an ACK has gone out. Called by the request reader after
// every successful non-blocking read when Config.QuickAck is set.
func RefreshQuickAck(fd int) error {
	return refreshQuickAck(fd)
}
