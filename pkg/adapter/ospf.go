package adapter

import (
	"encoding/json"
	"net"
	"strings"
	"sync"

	"github.com/routerd/routerd/internal/mds"
	"github.com/routerd/routerd/internal/ospf"
	"github.com/routerd/routerd/internal/rerror"
	"github.com/routerd/routerd/internal/worker"
)

const ospfConfigRoot = "/config/router_ospf"

const ospfExecInterface = "/show/ip/ospf/interface"

// NewOspfFactory returns a Factory building the ospf worker: process
// creation/teardown under /config/router_ospf/<proc>, backed by the
// interface state machine and an area-scoped link state database per process.
func NewOspfFactory() Factory {
	return func(deps Deps) (Adapter, error) {
		in := make(chan any, 64)
		out := make(chan any, 64)
		w := worker.New("ospf", in, out, nil, nil)

		o := &ospfAdapter{
			ism:       ospf.NewIsm(),
			processes: make(map[string]*ospfProcess),
		}
		w.ConfigMDS.Register(ospfConfigRoot, &mds.Handler{
			Category: mds.Local,
			Put:      o.handlePutProcess,
			Delete:   o.handleDeleteProcess,
		})
		w.ExecMDS.Register(ospfExecInterface, &mds.Handler{
			Category: mds.Local,
			Get:      o.handleShowInterface,
		})

		return &baseAdapter{name: "ospf", segments: []string{"router_ospf"}, execPaths: []string{ospfExecInterface}, w: w}, nil
	}
}

// ospfProcess is one "router ospf <proc>" instance: the interfaces it has
// been told to run on and the area-scoped LSDB it originates into.
type ospfProcess struct {
	routerID   string
	interfaces map[string]*ospf.Interface
	area       *ospf.Lsdb
}

type ospfAdapter struct {
	mu        sync.Mutex
	ism       *ospf.Ism
	processes map[string]*ospfProcess
}

type ospfProcessBody struct {
	RouterID   string   `json:"router_id"`
	Interfaces []string `json:"interfaces"`
}

func procIDFromPath(path string) (string, bool) {
	rest := strings.TrimPrefix(path, ospfConfigRoot+"/")
	if rest == path || rest == "" {
		return "", false
	}
	return rest, true
}

func (o *ospfAdapter) handlePutProcess(req mds.Request) mds.Response {
	proc, ok := procIDFromPath(req.Path)
	if !ok {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, "expected /config/router_ospf/<proc>")}
	}

	var body ospfProcessBody
	if req.Body != "" {
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, err.Error())}
		}
	}
	if body.RouterID == "" {
		body.RouterID = "0.0.0.1"
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	p := &ospfProcess{
		routerID:   body.RouterID,
		interfaces: make(map[string]*ospf.Interface, len(body.Interfaces)),
		area:       ospf.NewLsdb(ospf.AreaScope),
	}
	for _, name := range body.Interfaces {
		iface := &ospf.Interface{Name: name, State: ospf.Down}
		o.ism.HandleEvent(iface, ospf.InterfaceUp)
		p.interfaces[name] = iface
	}

	if key, ok := routerLsaKey(body.RouterID); ok {
		_ = p.area.Install(ospf.RouterLsa, key, &ospf.LsaRecord{SelfOriginated: true})
	}

	o.processes[proc] = p
	return mds.Response{ID: req.ID, Body: "{}"}
}

func (o *ospfAdapter) handleDeleteProcess(req mds.Request) mds.Response {
	proc, ok := procIDFromPath(req.Path)
	if !ok {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, "expected /config/router_ospf/<proc>")}
	}

	o.mu.Lock()
	for name, iface := range o.processes[proc].interfacesOrNil() {
		o.ism.HandleEvent(iface, ospf.InterfaceDown)
		_ = name
	}
	delete(o.processes, proc)
	o.mu.Unlock()

	return mds.Response{ID: req.ID, Body: "{}"}
}

func (p *ospfProcess) interfacesOrNil() map[string]*ospf.Interface {
	if p == nil {
		return nil
	}
	return p.interfaces
}

type interfaceView struct {
	Process   string `json:"process"`
	Interface string `json:"interface"`
	State     string `json:"state"`
}

func (o *ospfAdapter) handleShowInterface(req mds.Request) mds.Response {
	o.mu.Lock()
	defer o.mu.Unlock()

	var views []interfaceView
	for proc, p := range o.processes {
		for name, iface := range p.interfaces {
			views = append(views, interfaceView{Process: proc, Interface: name, State: iface.State.String()})
		}
	}

	body, err := json.Marshal(views)
	if err != nil {
		return mds.Response{ID: req.ID, Err: rerror.Action("failed to marshal interface dump", err)}
	}
	return mds.Response{ID: req.ID, Body: string(body)}
}

// routerLsaKey builds the (Link State ID, Advertising Router) tuple this
// skeleton uses for a process's self-originated Router-LSA: both fields
// set to the process's router ID, as is conventional for a Router-LSA.
func routerLsaKey(routerID string) (ospf.LsKey, bool) {
	ip := net.ParseIP(routerID).To4()
	if ip == nil {
		return ospf.LsKey{}, false
	}
	var key ospf.LsKey
	copy(key.LinkStateID[:], ip)
	copy(key.AdvRouter[:], ip)
	return key, true
}
