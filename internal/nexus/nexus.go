// Package nexus implements the router daemon's single-process supervisor:
// it owns the MDS tree and config-routing table, runs the event loop,
// accepts UDS config/exec connections, brokers requests and timers across
// per-protocol worker threads, and drives orderly shutdown.
package nexus

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/routerd/routerd/internal/evloop"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/mds"
	"github.com/routerd/routerd/internal/rerror"
	"github.com/routerd/routerd/internal/udsnet"
	"github.com/routerd/routerd/internal/worker"
)

// Config is the nexus's own boot configuration, independent of the
// workers it spawns.
type Config struct {
	ConfigSocketPath string
	ExecSocketPath   string
}

// Nexus is the router daemon's single-process supervisor.
type Nexus struct {
	loop *evloop.Loop

	configSrv *udsnet.Server
	execSrv   *udsnet.Server

	routeTable RouteTable
	tree       *mds.Tree

	workers map[string]*worker.Worker

	pendingMu sync.Mutex
	pending   map[uint64]*udsnet.Entry

	nextID uint64

	timerTokMu sync.Mutex
	// timerTok maps a (proto, local token) pair to the evloop token, so a
	// worker's own timer cancellation (not yet exposed) could look it up.
	timerTok map[timerKey]uint32
}

type timerKey struct {
	proto string
	token uint32
}

// New constructs an empty Nexus around loop. Call RegisterWorker for each
// protocol worker, then Boot to open the listeners, then Run.
func New(loop *evloop.Loop) *Nexus {
	return &Nexus{
		loop:       loop,
		routeTable: RouteTable{},
		tree:       mds.New(),
		workers:    map[string]*worker.Worker{},
		pending:    map[uint64]*udsnet.Entry{},
		timerTok:   map[timerKey]uint32{},
	}
}

// Tree exposes the nexus-owned MDS tree for boot-time registration of
// local handlers and worker proxies under /show and other non-config
// roots.
func (n *Nexus) Tree() *mds.Tree { return n.tree }

// RouteTable exposes the top-level /config dispatch table for boot-time
// registration.
func (n *Nexus) RouteTable() RouteTable { return n.routeTable }

// RegisterWorker wires w into the nexus: its Out channel is polled each
// tick like any other channel handler, and its name becomes a valid
// RouteEntry/Handler target.
func (n *Nexus) RegisterWorker(w *worker.Worker) {
	n.workers[w.Name] = w
	n.loop.RegisterChannel(&workerOutPoller{nexus: n, worker: w})
}

// Boot opens the two UDS listeners. Call after every worker has been
// registered and the MDS tree/route table populated.
func (n *Nexus) Boot(cfg Config) error {
	configSrv, err := udsnet.Listen("config", cfg.ConfigSocketPath, n.loop, n.handleConfigFrame)
	if err != nil {
		return rerror.Init("failed to open config listener", err)
	}
	n.configSrv = configSrv

	execSrv, err := udsnet.Listen("exec", cfg.ExecSocketPath, n.loop, n.handleExecFrame)
	if err != nil {
		return rerror.Init("failed to open exec listener", err)
	}
	n.execSrv = execSrv

	return nil
}

// Run starts every registered worker's goroutine and enters the event
// loop. It returns when the loop exits (on shutdown or a handler error).
func (n *Nexus) Run() error {
	for _, w := range n.workers {
		go w.Run()
	}
	return n.loop.Run()
}

// Shutdown sets the event loop's shutdown latch, sends ProtoTermination to
// every worker, and removes the UDS socket files. It does not block for
// the worker goroutines to actually exit; the worker loop's own Tick bounds
// how long that takes.
func (n *Nexus) Shutdown() {
	n.loop.RequestShutdown()
	for _, w := range n.workers {
		select {
		case w.In <- worker.ProtoTermination{}:
		default:
		}
	}
	if n.configSrv != nil {
		_ = n.configSrv.Close()
	}
	if n.execSrv != nil {
		_ = n.execSrv.Close()
	}
}

func (n *Nexus) nextCorrelationID() uint64 {
	return atomic.AddUint64(&n.nextID, 1)
}

func (n *Nexus) handleConfigFrame(entry *udsnet.Entry, frame []byte) {
	n.handleFrame("config", entry, frame)
}

func (n *Nexus) handleExecFrame(entry *udsnet.Entry, frame []byte) {
	n.handleFrame("exec", entry, frame)
}

func (n *Nexus) handleFrame(category string, entry *udsnet.Entry, frame []byte) {
	req, err := udsnet.DecodeRequest(string(frame))
	if err != nil {
		n.writeError(entry, err)
		return
	}

	id := n.nextCorrelationID()

	if category == "config" {
		if seg, ok := topSegment(req.Path); ok {
			if route, found := n.routeTable[seg]; found {
				n.dispatchRoute(category, id, route, req, entry)
				return
			}
		}
	}

	handler := n.tree.Lookup(req.Path)
	if handler == nil {
		n.writeError(entry, rerror.Request(rerror.StatusNotFound, "no handler for "+req.Path))
		return
	}

	if handler.Category == mds.Proxy {
		n.forward(handler.Worker, category, id, req, entry)
		return
	}

	resp := mds.Dispatch(n.tree, mds.Request{ID: id, Method: req.Method, Path: req.Path, Body: req.Body})
	n.writeResponse(entry, resp)
}

func (n *Nexus) dispatchRoute(category string, id uint64, route RouteEntry, req udsnet.Request, entry *udsnet.Entry) {
	if route.Kind == RouteProto {
		n.forward(route.Worker, category, id, req, entry)
		return
	}

	resp := route.Local(mds.Request{ID: id, Method: req.Method, Path: req.Path, Body: req.Body})
	n.writeResponse(entry, resp)
}

func (n *Nexus) forward(workerName, category string, id uint64, req udsnet.Request, entry *udsnet.Entry) {
	w, ok := n.workers[workerName]
	if !ok {
		n.writeError(entry, rerror.Request(rerror.StatusNotFound, "no worker named "+workerName))
		return
	}

	n.pendingMu.Lock()
	n.pending[id] = entry
	n.pendingMu.Unlock()

	var msg any
	if category == "config" {
		msg = worker.ConfigRequest{ID: id, Method: req.Method, Path: req.Path, Body: req.Body}
	} else {
		msg = worker.ExecRequest{ID: id, Method: req.Method, Path: req.Path, Body: req.Body}
	}
	w.In <- msg
}

func (n *Nexus) writeResponse(entry *udsnet.Entry, resp mds.Response) {
	if resp.Err != nil {
		n.writeError(entry, resp.Err)
		return
	}
	_ = entry.Write(udsnet.EncodeSuccess(resp.Body))
}

func (n *Nexus) writeError(entry *udsnet.Entry, err error) {
	status := rerror.RequestStatus("500")
	if reqErr, ok := err.(*rerror.RequestError); ok {
		status = reqErr.Status
	}
	_ = entry.Write(udsnet.EncodeError(status, err.Error()))
}

// onWorkerOut is invoked once per message drained from a worker's Out
// channel: a Response is correlated back to its pending UDS entry, a
// TimerRegistration is enqueued on the real timer queue.
func (n *Nexus) onWorkerOut(w *worker.Worker, msg any) {
	switch m := msg.(type) {
	case worker.Response:
		n.pendingMu.Lock()
		entry, ok := n.pending[m.ID]
		delete(n.pending, m.ID)
		n.pendingMu.Unlock()
		if !ok {
			return
		}
		if m.Err != nil {
			n.writeError(entry, m.Err)
			return
		}
		_ = entry.Write(udsnet.EncodeSuccess(m.Body))

	case worker.TimerRegistration:
		localToken := m.Token
		loopTok := n.loop.RegisterTimer(m.Duration, func() {
			select {
			case w.In <- worker.TimerExpiration{Token: localToken}:
			default:
				logger.Error("worker timer channel full, dropping expiration", "proto", m.Proto)
			}
		})
		n.timerTokMu.Lock()
		n.timerTok[timerKey{proto: m.Proto, token: localToken}] = loopTok
		n.timerTokMu.Unlock()
	}
}

func topSegment(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(trimmed, "config/") {
		return "", false
	}
	rest := strings.TrimPrefix(trimmed, "config/")
	if rest == "" {
		return "", false
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx], true
	}
	return rest, true
}

// workerOutPoller adapts a worker's Out channel to evloop.ChannelHandler.
type workerOutPoller struct {
	nexus  *Nexus
	worker *worker.Worker
}

func (p *workerOutPoller) PollChannel() []evloop.ChannelEvent {
	var out []evloop.ChannelEvent
	for {
		select {
		case msg := <-p.worker.Out:
			m := msg
			out = append(out, evloop.ChannelEvent{Handle: func() {
				p.nexus.onWorkerOut(p.worker, m)
			}})
		default:
			return out
		}
	}
}

