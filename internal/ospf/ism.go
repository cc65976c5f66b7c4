// Package ospf implements the interface state machine skeleton and
// multi-scope link state database shell: the table-driven (state, event)
// dispatch and the per-scope LSA type reservation, with no flooding or
// adjacency protocol behind either.
package ospf

import (
	"github.com/routerd/routerd/internal/logger"
)

// IsmState is an OSPF interface's state per RFC2328 s9.1.
type IsmState int

const (
	Down IsmState = iota
	Loopback
	Waiting
	PointToPoint
	DROther
	Backup
	DR
)

func (s IsmState) String() string {
	switch s {
	case Down:
		return "Down"
	case Loopback:
		return "Loopback"
	case Waiting:
		return "Waiting"
	case PointToPoint:
		return "point-to-point"
	case DROther:
		return "DR Other"
	case Backup:
		return "Backup"
	case DR:
		return "DR"
	default:
		return "Unknown"
	}
}

// IsmEvent drives a state transition per RFC2328 s9.2.
type IsmEvent int

const (
	InterfaceUp IsmEvent = iota
	WaitTimer
	BackupSeen
	NeighborChange
	LoopInd
	UnloopInd
	InterfaceDown
)

func (e IsmEvent) String() string {
	switch e {
	case InterfaceUp:
		return "InterfaceUp"
	case WaitTimer:
		return "WaitTimer"
	case BackupSeen:
		return "BackupSeen"
	case NeighborChange:
		return "NeighborChange"
	case LoopInd:
		return "LoopInd"
	case UnloopInd:
		return "UnloopInd"
	case InterfaceDown:
		return "InterfaceDown"
	default:
		return "Unknown"
	}
}

// Interface is the minimal state an ISM action needs: which state the
// interface is currently in. Adjacency, DR election, and LSA origination
// live outside this skeleton.
type Interface struct {
	Name  string
	State IsmState
}

type ismKey struct {
	state IsmState
	event IsmEvent
}

// ismAction computes the next state for one (state, event) pair.
type ismAction func(iface *Interface) IsmState

// Ism is the interface state machine: a table of (state, event) → action
// built once at construction and consulted on every event delivery.
type Ism struct {
	actions map[ismKey]ismAction
}

// NewIsm builds the ISM with every (state, event) pair RFC2328 s9.3 defines
// an action for. Pairs absent from the table are logged and ignored on
// delivery.
func NewIsm() *Ism {
	m := &Ism{actions: make(map[ismKey]ismAction)}

	m.actions[ismKey{Down, InterfaceUp}] = interfaceUp
	m.actions[ismKey{Down, LoopInd}] = loopInd

	m.actions[ismKey{Loopback, UnloopInd}] = unloopInd
	m.actions[ismKey{Loopback, InterfaceDown}] = interfaceDown

	m.actions[ismKey{Waiting, WaitTimer}] = waitTimer
	m.actions[ismKey{Waiting, BackupSeen}] = backupSeen
	m.actions[ismKey{Waiting, LoopInd}] = loopInd
	m.actions[ismKey{Waiting, InterfaceDown}] = interfaceDown

	m.actions[ismKey{PointToPoint, LoopInd}] = loopInd
	m.actions[ismKey{PointToPoint, InterfaceDown}] = interfaceDown

	m.actions[ismKey{DROther, NeighborChange}] = neighborChange
	m.actions[ismKey{DROther, LoopInd}] = loopInd
	m.actions[ismKey{DROther, InterfaceDown}] = interfaceDown

	m.actions[ismKey{Backup, NeighborChange}] = neighborChange
	m.actions[ismKey{Backup, LoopInd}] = loopInd
	m.actions[ismKey{Backup, InterfaceDown}] = interfaceDown

	m.actions[ismKey{DR, NeighborChange}] = neighborChange
	m.actions[ismKey{DR, LoopInd}] = loopInd
	m.actions[ismKey{DR, InterfaceDown}] = interfaceDown

	return m
}

// HandleEvent looks up the action for iface's current state and event,
// applies it, and transitions iface.State if it changed. An unmapped pair
// is logged at debug level and otherwise ignored.
func (m *Ism) HandleEvent(iface *Interface, event IsmEvent) {
	state := iface.State
	action, ok := m.actions[ismKey{state, event}]
	if !ok {
		logger.Debug("ism event ignored", logger.IsmState(state.String()), logger.IsmEvent(event.String()))
		return
	}

	next := action(iface)
	logger.Debug("ism action performed", logger.IsmState(state.String()), logger.IsmEvent(event.String()))

	if next != state {
		m.changeState(iface, next)
	}
}

// changeState commits a state transition. RFC2328 s9.4(6)'s Network-LSA
// origination and DR/BDR status update are out of scope for this skeleton.
func (m *Ism) changeState(iface *Interface, next IsmState) {
	logger.Info("ism state change", "interface", iface.Name, logger.IsmState(iface.State.String()), "to", next.String())
	iface.State = next
}

func loopInd(_ *Interface) IsmState   { return Loopback }
func unloopInd(_ *Interface) IsmState { return Loopback }

func interfaceUp(iface *Interface) IsmState   { return iface.State }
func interfaceDown(iface *Interface) IsmState { return iface.State }
func backupSeen(iface *Interface) IsmState    { return iface.State }
func waitTimer(iface *Interface) IsmState     { return iface.State }

// neighborChange would normally trigger DR election (→ DR, DROther, Backup);
// the election itself is out of scope for this skeleton.
func neighborChange(iface *Interface) IsmState { return iface.State }
