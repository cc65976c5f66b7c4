package worker

import (
	"sync"
	"time"
)

// TimerClient is a worker's local view of the shared timer wheel: it mints
// tokens and keeps the handler map itself, while the nexus owns the actual
// deadline queue. Register returns immediately; the real wait happens on
// the nexus's event loop.
type TimerClient struct {
	proto   string
	out     chan<- any
	mu      sync.Mutex
	next    uint32
	handler map[uint32]func()
}

// NewTimerClient builds a client that forwards TimerRegistration messages
// for proto on out (the worker's to-nexus channel).
func NewTimerClient(proto string, out chan<- any) *TimerClient {
	return &TimerClient{proto: proto, out: out, handler: make(map[uint32]func())}
}

// Register mints a token, stores handler locally, and asynchronously
// forwards the registration to the nexus.
func (c *TimerClient) Register(d time.Duration, handler func()) uint32 {
	c.mu.Lock()
	c.next++
	token := c.next
	c.handler[token] = handler
	c.mu.Unlock()

	c.out <- TimerRegistration{Proto: c.proto, Token: token, Duration: d}
	return token
}

// Expire looks up token's handler and invokes it, removing the
// registration. A token with no registered handler (already expired or
// never ours) is silently ignored.
func (c *TimerClient) Expire(token uint32) {
	c.mu.Lock()
	h, ok := c.handler[token]
	delete(c.handler, token)
	c.mu.Unlock()

	if ok {
		h()
	}
}
