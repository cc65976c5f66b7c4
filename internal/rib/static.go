package rib

import (
	"encoding/json"
	"net"

	"github.com/routerd/routerd/internal/rerror"
)

// staticNexthop mirrors one element of a static-route PUT body's nexthops
// array.
type staticNexthop struct {
	Nexthop struct {
		IPv4Address string `json:"ipv4_address"`
		Interface   string `json:"interface"`
	} `json:"nexthop"`
	Distance uint8  `json:"distance"`
	Tag      uint32 `json:"tag"`
}

type staticRouteBody struct {
	Nexthops []staticNexthop `json:"nexthops"`
}

// StaticGroup is one distance's worth of a parsed static-route body: every
// nexthop sharing that distance becomes a single RIB entry.
type StaticGroup struct {
	Distance uint8
	Tag      uint32
	Nexthops []Nexthop
}

// ParseStaticRouteBody groups a static-route PUT body's nexthops by
// distance, one RIB entry per distinct distance sharing that distance's
// nexthops.
func ParseStaticRouteBody(body []byte) ([]StaticGroup, error) {
	var doc staticRouteBody
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, rerror.Init("failed to parse static route body", err)
	}

	order := []uint8(nil)
	groups := map[uint8]*StaticGroup{}

	for _, nh := range doc.Nexthops {
		g, ok := groups[nh.Distance]
		if !ok {
			g = &StaticGroup{Distance: nh.Distance, Tag: nh.Tag}
			groups[nh.Distance] = g
			order = append(order, nh.Distance)
		}
		g.Nexthops = append(g.Nexthops, Nexthop{
			IPv4Address: nh.Nexthop.IPv4Address,
			Interface:   nh.Nexthop.Interface,
		})
	}

	out := make([]StaticGroup, 0, len(order))
	for _, d := range order {
		out = append(out, *groups[d])
	}
	return out, nil
}

// ParseIPv4Prefix turns a dotted-quad address and dotted-quad subnet mask
// (as carried in a /config/route_ipv4/<addr>/<mask> path) into a Prefix.
func ParseIPv4Prefix(addr, mask string) (Prefix, error) {
	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return Prefix{}, rerror.Init("invalid ipv4 address "+addr, nil)
	}
	maskIP := net.ParseIP(mask).To4()
	if maskIP == nil {
		return Prefix{}, rerror.Init("invalid ipv4 mask "+mask, nil)
	}
	ones, bits := net.IPMask(maskIP).Size()
	if bits != 32 {
		return Prefix{}, rerror.Init("invalid ipv4 mask "+mask, nil)
	}
	return Prefix{Addr: []byte(ip), Len: ones}, nil
}
