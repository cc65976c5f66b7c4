// Package rib implements the per-address-family Routing Information Base:
// prefix-tree storage of candidate routes, best-route selection, and FIB
// synchronization against a kernel driver.
//
// Grounded on the routing table module of the router this daemon is
// modeled on, which keeps one prefix tree per address family and a list of
// candidate routes per prefix, each tagged with the protocol that
// authored it and an administrative distance.
package rib

import "fmt"

// RibType identifies the protocol that authored a RIB entry. Declaration
// order is significant: it is the tie-break order used when two entries
// for the same prefix share the lowest administrative distance. Earlier
// in this list wins ties.
type RibType int

const (
	System RibType = iota
	Kernel
	Connected
	Static
	Eigrp
	Ospf
	Isis
	Rip
	Bgp
)

func (t RibType) String() string {
	switch t {
	case System:
		return "system"
	case Kernel:
		return "kernel"
	case Connected:
		return "connected"
	case Static:
		return "static"
	case Eigrp:
		return "eigrp"
	case Ospf:
		return "ospf"
	case Isis:
		return "isis"
	case Rip:
		return "rip"
	case Bgp:
		return "bgp"
	default:
		return fmt.Sprintf("ribtype(%d)", int(t))
	}
}

// Nexthop is either an address-based or interface-based next hop. Exactly
// one of IPv4Address/Interface is expected to be set; both zero means the
// route is a floating prefix with no forwarding information of its own.
type Nexthop struct {
	IPv4Address string
	Interface   string
}

// Entry is one candidate route for a prefix: a protocol's claim, its
// administrative distance, and the nexthops it installs on selection.
type Entry struct {
	Type     RibType
	Distance uint8
	Tag      uint32
	Nexthops []Nexthop

	seq uint64 // insertion order, second tie-break after Type
}

// Prefix identifies a routed destination: address bytes (4 for IPv4, 16
// for IPv6) and a mask length in bits.
type Prefix struct {
	Addr []byte
	Len  int
}

func (p Prefix) String() string {
	return fmt.Sprintf("%v/%d", p.Addr, p.Len)
}
