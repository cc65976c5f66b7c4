// Package adapter is a registry of protocol workers: one Adapter per
// protocol, built from shared daemon dependencies by a Factory and wired
// into the nexus's worker map and top-level config route table by the
// daemon's boot sequence.
package adapter

import (
	"github.com/routerd/routerd/internal/rib"
	"github.com/routerd/routerd/internal/worker"
)

// Deps carries the daemon-wide resources a Factory may need to build its
// worker's config/exec MDS handlers. Kept as one struct, rather than each
// Factory taking its own bespoke argument list, so the boot sequence can
// hold a single slice of Factory values regardless of which dependencies
// each one actually touches.
type Deps struct {
	RIB4 *rib.Table // IPv4 unicast RIB, shared by zebra and any protocol that originates routes
}

// Adapter is one protocol worker pluggable into the nexus: its Worker
// drives the nexus/worker channel protocol, Segments lists the top-level
// /config path segments the nexus's route table should forward to it, and
// ExecPaths lists the /show paths the nexus's MDS tree should proxy to it.
type Adapter interface {
	Name() string
	Worker() *worker.Worker
	Segments() []string
	ExecPaths() []string
}

// Factory builds an Adapter from the daemon's shared dependencies. A
// function type rather than an interface so a zero-dependency adapter can
// be a plain closure, and so pkg/adapter depends on internal/worker and
// internal/rib rather than the other way around.
type Factory func(deps Deps) (Adapter, error)

// baseAdapter implements the Name/Worker/Segments/ExecPaths boilerplate
// every concrete adapter shares.
type baseAdapter struct {
	name      string
	segments  []string
	execPaths []string
	w         *worker.Worker
}

func (a *baseAdapter) Name() string           { return a.name }
func (a *baseAdapter) Worker() *worker.Worker { return a.w }
func (a *baseAdapter) Segments() []string     { return a.segments }
func (a *baseAdapter) ExecPaths() []string    { return a.execPaths }
