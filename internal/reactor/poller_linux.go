//go:build linux

package reactor

import (
	"syscall"
	"time"
)

type epollPoller struct {
	epfd int
}

func newPoller() (poller, error) {
	epfd, err := syscall.EpollCreate1(syscall.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd}, nil
}

func (p *epollPoller) interestMask(writable bool) uint32 {
	mask := uint32(syscall.EPOLLIN)
	if writable {
		mask |= syscall.EPOLLOUT
	}
	return mask
}

func (p *epollPoller) Add(fd int, writable bool) error {
	ev := syscall.EpollEvent{Events: p.interestMask(writable), Fd: int32(fd)}
	return syscall.EpollCtl(p.epfd, syscall.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) ModifyWritable(fd int, writable bool) error {
	ev := syscall.EpollEvent{Events: p.interestMask(writable), Fd: int32(fd)}
	return syscall.EpollCtl(p.epfd, syscall.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) Remove(fd int) error {
	return syscall.EpollCtl(p.epfd, syscall.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) Wait(timeout time.Duration) ([]event, error) {
	raw := make([]syscall.EpollEvent, 256)
	ms := int(timeout / time.Millisecond)
	if timeout > 0 && ms == 0 {
		ms = 1
	}
	n, err := syscall.EpollWait(p.epfd, raw, ms)
	if err == syscall.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	events := make([]event, 0, n)
	for i := 0; i < n; i++ {
		e := raw[i]
		events = append(events, event{
			fd:       int(e.Fd),
			readable: e.Events&syscall.EPOLLIN != 0,
			writable: e.Events&syscall.EPOLLOUT != 0,
			errored:  e.Events&(syscall.EPOLLERR|syscall.EPOLLHUP) != 0,
		})
	}
	return events, nil
}

func (p *epollPoller) Close() error {
	return syscall.Close(p.epfd)
}
