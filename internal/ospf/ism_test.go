package ospf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsmLoopIndTransitionsToLoopbackFromAnyState(t *testing.T) {
	m := NewIsm()
	iface := &Interface{Name: "eth0", State: Waiting}

	m.HandleEvent(iface, LoopInd)

	require.Equal(t, Loopback, iface.State)
}

func TestIsmUnloopIndFromLoopback(t *testing.T) {
	m := NewIsm()
	iface := &Interface{Name: "eth0", State: Loopback}

	m.HandleEvent(iface, UnloopInd)

	require.Equal(t, Loopback, iface.State)
}

func TestIsmUnknownPairIsIgnored(t *testing.T) {
	m := NewIsm()
	iface := &Interface{Name: "eth0", State: Down}

	m.HandleEvent(iface, BackupSeen)

	require.Equal(t, Down, iface.State)
}

func TestIsmInterfaceDownFromDROtherStaysMapped(t *testing.T) {
	m := NewIsm()
	iface := &Interface{Name: "eth0", State: DROther}

	m.HandleEvent(iface, InterfaceDown)

	require.Equal(t, DROther, iface.State)
}

func TestIsmStateStrings(t *testing.T) {
	require.Equal(t, "point-to-point", PointToPoint.String())
	require.Equal(t, "DR Other", DROther.String())
}

func TestIsmEventStrings(t *testing.T) {
	require.Equal(t, "NeighborChange", NeighborChange.String())
	require.Equal(t, "InterfaceUp", InterfaceUp.String())
}
