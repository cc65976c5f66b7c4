//go:build linux

package evloop

import (
	"time"

	"golang.org/x/sys/unix"
)

// EpollPoller implements Poller over Linux epoll.
type EpollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

// NewEpollPoller creates an epoll instance sized for up to maxEvents ready
// descriptors per Wait call.
func NewEpollPoller(maxEvents int) (*EpollPoller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &EpollPoller{epfd: fd, events: make([]unix.EpollEvent, maxEvents)}, nil
}

func (p *EpollPoller) Add(fd int, edge bool) error {
	flags := uint32(unix.EPOLLIN)
	if edge {
		flags |= unix.EPOLLET
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: flags, Fd: int32(fd)})
}

func (p *EpollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *EpollPoller) Wait(timeout time.Duration) ([]int, error) {
	n, err := unix.EpollWait(p.epfd, p.events, int(timeout/time.Millisecond))
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, int(p.events[i].Fd))
	}
	return out, nil
}

func (p *EpollPoller) Close() error {
	return unix.Close(p.epfd)
}
