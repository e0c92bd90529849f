// Package reactor implements the single-threaded, non-blocking event loop
// that owns the readiness multiplexer and the indexed priority queue,
// dispatching readability and writability events to the connection state
// machine via the request reader and response writer.
//
// OS-specific polling syscalls are split into build-tagged files (one per
// platform) the same way socket tuning and sendfile are, written directly
// against the documented Linux epoll and Darwin kqueue syscalls.
package reactor

import "time"

// event is one readiness notification from the poller, normalized across
// epoll and kqueue.
type event struct {
	fd       int
	readable bool
	writable bool
	errored  bool
}

// poller is the per-OS readiness multiplexer. One fd may be registered
// read-only (connections in READING_REQUEST or KEEP_ALIVE_IDLE) or for
// both read and write. This server always calls Add read-only and then
// uses ModifyWritable, which toggles write interest without disturbing
// read interest: writability is only ever registered while a connection
// is sending headers or body.
type poller interface {
	Add(fd int, writable bool) error
	ModifyWritable(fd int, writable bool) error
	Remove(fd int) error
	Wait(timeout time.Duration) ([]event, error)
	Close() error
}
