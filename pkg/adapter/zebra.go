package adapter

import (
	"encoding/json"
	"strings"

	"github.com/routerd/routerd/internal/mds"
	"github.com/routerd/routerd/internal/rerror"
	"github.com/routerd/routerd/internal/rib"
	"github.com/routerd/routerd/internal/worker"
)

// zebraConfigRoot is the single node the zebra config handler is registered
// at; the MDS tree's early-stop-at-leaf lookup (internal/mds.Tree.Lookup)
// hands every deeper path, carrying the address and mask as trailing
// segments, to this one handler.
const zebraConfigRoot = "/config/route_ipv4"

const zebraExecRoute = "/show/ip/route"

// NewZebraFactory returns a Factory building the zebra worker: the RIB's
// UDS-facing side, answering static route PUT/DELETE under
// /config/route_ipv4/<addr>/<mask> and "show ip route" under /show/ip/route.
func NewZebraFactory() Factory {
	return func(deps Deps) (Adapter, error) {
		if deps.RIB4 == nil {
			return nil, rerror.Init("zebra adapter requires an IPv4 RIB table", nil)
		}

		in := make(chan any, 64)
		out := make(chan any, 64)
		w := worker.New("zebra", in, out, nil, nil)

		z := &zebraAdapter{rib: deps.RIB4}
		w.ConfigMDS.Register(zebraConfigRoot, &mds.Handler{
			Category: mds.Local,
			Put:      z.handlePutRoute,
			Delete:   z.handleDeleteRoute,
		})
		w.ExecMDS.Register(zebraExecRoute, &mds.Handler{
			Category: mds.Local,
			Get:      z.handleShowRoute,
		})

		return &baseAdapter{name: "zebra", segments: []string{"route_ipv4"}, execPaths: []string{zebraExecRoute}, w: w}, nil
	}
}

type zebraAdapter struct {
	rib *rib.Table
}

// addrMaskFromPath splits the trailing "<addr>/<mask>" segments off a
// request path rooted at zebraConfigRoot.
func addrMaskFromPath(path string) (addr, mask string, ok bool) {
	rest := strings.TrimPrefix(path, zebraConfigRoot+"/")
	if rest == path {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (z *zebraAdapter) handlePutRoute(req mds.Request) mds.Response {
	addr, mask, ok := addrMaskFromPath(req.Path)
	if !ok {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, "expected /config/route_ipv4/<addr>/<mask>")}
	}
	prefix, err := rib.ParseIPv4Prefix(addr, mask)
	if err != nil {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, err.Error())}
	}

	groups, err := rib.ParseStaticRouteBody([]byte(req.Body))
	if err != nil {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, err.Error())}
	}

	for _, g := range groups {
		if err := z.rib.Add(prefix, rib.Static, g.Distance, g.Tag, g.Nexthops); err != nil {
			return mds.Response{ID: req.ID, Err: err}
		}
	}
	return mds.Response{ID: req.ID, Body: "{}"}
}

func (z *zebraAdapter) handleDeleteRoute(req mds.Request) mds.Response {
	addr, mask, ok := addrMaskFromPath(req.Path)
	if !ok {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, "expected /config/route_ipv4/<addr>/<mask>")}
	}
	prefix, err := rib.ParseIPv4Prefix(addr, mask)
	if err != nil {
		return mds.Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, err.Error())}
	}

	// DELETE carries no distance, so only the static entries at distance 1
	// are removed; static entries a PUT added at any other distance stay in
	// the RIB.
	if err := z.rib.Delete(prefix, rib.Static, 1); err != nil {
		return mds.Response{ID: req.ID, Err: err}
	}
	return mds.Response{ID: req.ID, Body: "{}"}
}

type routeView struct {
	Prefix   string   `json:"prefix"`
	Type     string   `json:"type"`
	Distance uint8    `json:"distance"`
	Nexthops []string `json:"nexthops"`
}

func (z *zebraAdapter) handleShowRoute(req mds.Request) mds.Response {
	routes := z.rib.All()
	views := make([]routeView, 0, len(routes))
	for _, r := range routes {
		nexthops := make([]string, 0, len(r.Entry.Nexthops))
		for _, nh := range r.Entry.Nexthops {
			switch {
			case nh.IPv4Address != "":
				nexthops = append(nexthops, nh.IPv4Address)
			case nh.Interface != "":
				nexthops = append(nexthops, nh.Interface)
			}
		}
		views = append(views, routeView{
			Prefix:   r.Prefix.String(),
			Type:     r.Entry.Type.String(),
			Distance: r.Entry.Distance,
			Nexthops: nexthops,
		})
	}

	body, err := json.Marshal(views)
	if err != nil {
		return mds.Response{ID: req.ID, Err: rerror.Action("failed to marshal route dump", err)}
	}
	return mds.Response{ID: req.ID, Body: string(body)}
}
