package nexus

import "github.com/routerd/routerd/internal/mds"

// RouteKind distinguishes a routeTable entry's two shapes, mirroring the
// config-master split between paths the nexus answers itself and paths
// that belong to a protocol worker.
type RouteKind int

const (
	RouteLocal RouteKind = iota
	RouteProto
)

// RouteEntry is one top-level /config/<segment> binding.
type RouteEntry struct {
	Kind   RouteKind
	Local  mds.HandlerFunc // used when Kind == RouteLocal
	Worker string          // used when Kind == RouteProto
}

// RouteTable is the nexus's top-level config dispatch table, consulted
// before falling through to the general MDS tree: a flat map from a
// /config path's first segment to either a local handler or the name of
// the worker that owns it.
type RouteTable map[string]RouteEntry
