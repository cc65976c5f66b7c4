package worker

import (
	"time"

	"github.com/routerd/routerd/internal/mds"
)

// Tick mirrors the nexus's own poll tick: how long a worker sleeps between
// channel-drain passes once both its inbound channels are empty.
const Tick = 10 * time.Millisecond

// ZebraHandler is invoked for every message a worker receives on its
// zebra-to-worker channel; only non-zebra workers have one.
type ZebraHandler func(msg any)

// Worker is one protocol's runtime: a config MDS subtree, an exec MDS
// subtree, a timer client, and the two channel pairs described for the
// nexus/worker and zebra/worker relationships.
type Worker struct {
	Name string

	In  chan any // nexus -> worker: ConfigRequest | ExecRequest | TimerExpiration | ProtoTermination
	Out chan any // worker -> nexus: Response | TimerRegistration

	ZebraIn  chan any // zebra -> worker, nil for the zebra worker itself
	ZebraOut chan any // worker -> zebra, nil for the zebra worker itself

	ConfigMDS *mds.Tree
	ExecMDS   *mds.Tree
	Timers    *TimerClient

	OnZebraMessage ZebraHandler

	terminated bool
}

// New builds a Worker with fresh MDS subtrees and a bound timer client.
func New(name string, in, out chan any, zebraIn, zebraOut chan any) *Worker {
	w := &Worker{
		Name:      name,
		In:        in,
		Out:       out,
		ZebraIn:   zebraIn,
		ZebraOut:  zebraOut,
		ConfigMDS: mds.New(),
		ExecMDS:   mds.New(),
	}
	w.Timers = NewTimerClient(name, out)
	return w
}

// Run drains the nexus channel then the zebra channel each pass, sleeping
// Tick between passes once both are empty, until ProtoTermination or In is
// closed.
func (w *Worker) Run() {
	for !w.terminated {
		for w.drainOnce() {
		}
		if w.terminated {
			return
		}
		time.Sleep(Tick)
	}
}

// drainOnce services at most one message without blocking, preferring the
// nexus channel over the zebra channel, and reports whether it did
// anything (so the caller can keep draining before sleeping).
func (w *Worker) drainOnce() bool {
	select {
	case msg, ok := <-w.In:
		if !ok {
			w.terminated = true
			return false
		}
		w.handleInbound(msg)
		return true
	default:
	}

	if w.ZebraIn != nil {
		select {
		case msg := <-w.ZebraIn:
			if w.OnZebraMessage != nil {
				w.OnZebraMessage(msg)
			}
			return true
		default:
		}
	}

	return false
}

func (w *Worker) handleInbound(msg any) {
	switch m := msg.(type) {
	case ConfigRequest:
		w.dispatch(w.ConfigMDS, m.ID, m.Method, m.Path, m.Body)
	case ExecRequest:
		w.dispatch(w.ExecMDS, m.ID, m.Method, m.Path, m.Body)
	case TimerExpiration:
		w.Timers.Expire(m.Token)
	case ProtoTermination:
		w.terminated = true
	}
}

func (w *Worker) dispatch(tree *mds.Tree, id uint64, method, path, body string) {
	resp := mds.Dispatch(tree, mds.Request{ID: id, Method: method, Path: path, Body: body})
	w.Out <- Response{ID: resp.ID, Body: resp.Body, Err: resp.Err}
}
