//go:build !linux && !darwin

package reactor

import (
	"errors"
	"time"
)

// errUnsupportedPlatform is returned by newPoller on platforms with
// neither epoll nor kqueue wired. The reactor's non-blocking event loop
// depends on a level-triggered readiness multiplexer; there is no safe
// generic fallback, so startup fails rather than busy-polling.
var errUnsupportedPlatform = errors.New("reactor: no readiness multiplexer wired for this platform")

type unsupportedPoller struct{}

func newPoller() (poller, error) {
	return nil, errUnsupportedPlatform
}

func (unsupportedPoller) Add(fd int, writable bool) error          { return errUnsupportedPlatform }
func (unsupportedPoller) ModifyWritable(fd int, writable bool) error { return errUnsupportedPlatform }
func (unsupportedPoller) Remove(fd int) error                       { return errUnsupportedPlatform }
func (unsupportedPoller) Wait(timeout time.Duration) ([]event, error) {
	return nil, errUnsupportedPlatform
}
func (unsupportedPoller) Close() error { return nil }
