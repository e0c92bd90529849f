//go:build darwin

package reactor

import (
	"syscall"
	"time"
)

type kqueuePoller struct {
	kq int
}

func newPoller() (poller, error) {
	kq, err := syscall.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{kq: kq}, nil
}

func (p *kqueuePoller) change(fd int, filter int16, flags uint16) error {
	ev := syscall.Kevent_t{
		Ident:  uint64(fd),
		Filter: filter,
		Flags:  flags,
	}
	_, err := syscall.Kevent(p.kq, []syscall.Kevent_t{ev}, nil, nil)
	return err
}

func (p *kqueuePoller) Add(fd int, writable bool) error {
	if err := p.change(fd, syscall.EVFILT_READ, syscall.EV_ADD); err != nil {
		return err
	}
	if writable {
		return p.change(fd, syscall.EVFILT_WRITE, syscall.EV_ADD)
	}
	return nil
}

func (p *kqueuePoller) ModifyWritable(fd int, writable bool) error {
	if writable {
		return p.change(fd, syscall.EVFILT_WRITE, syscall.EV_ADD)
	}
	// EV_DELETE on a filter that was never added returns ENOENT; harmless
	// since the caller only means "make sure write interest is off".
	_ = p.change(fd, syscall.EVFILT_WRITE, syscall.EV_DELETE)
	return nil
}

func (p *kqueuePoller) Remove(fd int) error {
	_ = p.change(fd, syscall.EVFILT_READ, syscall.EV_DELETE)
	_ = p.change(fd, syscall.EVFILT_WRITE, syscall.EV_DELETE)
	return nil
}

func (p *kqueuePoller) Wait(timeout time.Duration) ([]event, error) {
	raw := make([]syscall.Kevent_t, 256)
	ts := syscall.NsecToTimespec(timeout.Nanoseconds())
	n, err := syscall.Kevent(p.kq, nil, raw, &ts)
	if err == syscall.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	events := make([]event, 0, n)
	for i := 0; i < n; i++ {
		e := raw[i]
		ev := event{
			fd:      int(e.Ident),
			errored: e.Flags&syscall.EV_ERROR != 0,
		}
		switch e.Filter {
		case syscall.EVFILT_READ:
			ev.readable = true
			if e.Flags&syscall.EV_EOF != 0 {
				ev.errored = true
			}
		case syscall.EVFILT_WRITE:
			ev.writable = true
		}
		events = append(events, ev)
	}
	return events, nil
}

func (p *kqueuePoller) Close() error {
	return syscall.Close(p.kq)
}
