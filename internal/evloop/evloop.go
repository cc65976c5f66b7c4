// Package evloop implements the single-threaded, poll-based event loop that
// runs inside the nexus process: FD registration, channel polling, and a
// timer min-heap, dispatched on a bounded tick.
package evloop

import (
	"container/heap"
	"sync/atomic"
	"time"

	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/rerror"
)

// Tick is the bounded poll wait between dispatch passes.
const Tick = 10 * time.Millisecond

// FDEvent is what a registered FD handler is invoked with.
type FDEvent int

const (
	EventReadable FDEvent = iota
	EventWritable
)

// FDHandler is invoked when a registered file descriptor becomes ready.
// Returning rerror.ErrShutdown ends the loop.
type FDHandler func(fd int, ev FDEvent) error

// ChannelHandler exposes pending (event, payload) pairs to drain each tick,
// mirroring a Go channel's recv-without-blocking poll.
type ChannelHandler interface {
	// PollChannel drains and returns everything currently available without
	// blocking.
	PollChannel() []ChannelEvent
}

// ChannelEvent is one drained message plus the callback to invoke with it.
type ChannelEvent struct {
	Handle func()
}

// TimerHandler is invoked when a registered timer's deadline has passed.
type TimerHandler func()

type timerEntry struct {
	token    uint32
	deadline time.Time
	handler  TimerHandler
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// fdReg is one registered file descriptor.
type fdReg struct {
	fd      int
	edge    bool // edge-triggered (listeners) vs level-triggered (established sockets)
	handler FDHandler
}

// Loop is the nexus's single-threaded event loop.
type Loop struct {
	fds      map[int]*fdReg
	channels []ChannelHandler
	timers   timerHeap
	liveToks map[uint32]*timerEntry
	nextTok  uint32

	shutdownLatch int32 // sync/atomic; SIGINT latch polled every tick
	poller        Poller
}

// Poller abstracts the OS poll primitive (epoll/kqueue on Linux/BSD) so the
// loop itself stays platform-independent; a given build wires a concrete
// Poller implementation at construction.
type Poller interface {
	// Wait blocks up to timeout for readiness, returning the ready fds.
	Wait(timeout time.Duration) ([]int, error)
	Add(fd int, edge bool) error
	Remove(fd int) error
}

// New constructs an empty Loop around the given Poller.
func New(poller Poller) *Loop {
	return &Loop{
		fds:      make(map[int]*fdReg),
		liveToks: make(map[uint32]*timerEntry),
		poller:   poller,
	}
}

// RegisterFD adds a file descriptor with edge- or level-triggered interest.
func (l *Loop) RegisterFD(fd int, edge bool, handler FDHandler) error {
	l.fds[fd] = &fdReg{fd: fd, edge: edge, handler: handler}
	return l.poller.Add(fd, edge)
}

// UnregisterFD removes a file descriptor's registration.
func (l *Loop) UnregisterFD(fd int) error {
	delete(l.fds, fd)
	return l.poller.Remove(fd)
}

// RegisterChannel adds a channel handler drained every tick.
func (l *Loop) RegisterChannel(ch ChannelHandler) {
	l.channels = append(l.channels, ch)
}

// RegisterTimer adds a timer firing at now+d, returning a cancellable token.
func (l *Loop) RegisterTimer(d time.Duration, handler TimerHandler) uint32 {
	l.nextTok++
	tok := l.nextTok
	e := &timerEntry{token: tok, deadline: time.Now().Add(d), handler: handler}
	heap.Push(&l.timers, e)
	l.liveToks[tok] = e
	return tok
}

// CancelTimer marks a token inactive; the queue lazily discards it on pop.
func (l *Loop) CancelTimer(token uint32) {
	delete(l.liveToks, token)
}

// RequestShutdown sets the SIGINT latch; the loop exits on its next tick.
func (l *Loop) RequestShutdown() {
	atomic.StoreInt32(&l.shutdownLatch, 1)
}

func (l *Loop) shuttingDown() bool {
	return atomic.LoadInt32(&l.shutdownLatch) != 0
}

// Run executes the loop until a handler returns rerror.ErrShutdown or the
// shutdown latch is set. FD events are dispatched first, then channels are
// drained, then due timers fire, each tick.
func (l *Loop) Run() error {
	for {
		if l.shuttingDown() {
			logger.Info("event loop shutdown latch observed")
			return nil
		}

		ready, err := l.poller.Wait(Tick)
		if err != nil {
			return rerror.Kernel("poll wait failed", err)
		}

		for _, fd := range ready {
			reg, ok := l.fds[fd]
			if !ok {
				continue
			}
			if err := reg.handler(fd, EventReadable); err != nil {
				if err == rerror.ErrShutdown {
					return nil
				}
				logger.Error("fd handler error", logger.Err(err))
			}
		}

		for _, ch := range l.channels {
			for _, ev := range ch.PollChannel() {
				ev.Handle()
			}
		}

		l.runTimers()
	}
}

// runTimers pops and fires every timer whose deadline has passed, including
// multiple in a single call.
func (l *Loop) runTimers() {
	now := time.Now()
	for l.timers.Len() > 0 {
		top := l.timers[0]
		if top.deadline.After(now) {
			break
		}
		heap.Pop(&l.timers)
		if _, live := l.liveToks[top.token]; !live {
			continue
		}
		delete(l.liveToks, top.token)
		top.handler()
	}
}

// PendingTimers returns the count of still-live timer registrations, for
// metrics.
func (l *Loop) PendingTimers() int {
	return len(l.liveToks)
}
