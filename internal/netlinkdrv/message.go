package netlinkdrv

import (
	"net"

	"github.com/routerd/routerd/internal/rib"
	"golang.org/x/sys/unix"
)

// IfindexResolver maps an interface name to its kernel ifindex.
type IfindexResolver func(name string) (int, bool)

// buildRouteMessage renders a full RTM_NEWROUTE/RTM_DELROUTE datagram for
// entry on prefix: attributes are RTA_DST, RTA_PRIORITY, then either
// RTA_GATEWAY/RTA_OIF for a single nexthop or one RTA_MULTIPATH for
// several.
func buildRouteMessage(msgType uint16, flags uint16, seq uint32, prefix rib.Prefix, entry *rib.Entry, resolve IfindexResolver) ([]byte, error) {
	family := uint8(unix.AF_INET)
	if len(prefix.Addr) == 16 {
		family = unix.AF_INET6
	}

	rtmsg := make([]byte, rtmsgLen)
	rtmsg[0] = family
	rtmsg[1] = uint8(prefix.Len)
	rtmsg[2] = 0 // src_len
	rtmsg[3] = 0 // tos
	rtmsg[4] = unix.RT_TABLE_MAIN
	rtmsg[5] = ourProtocol
	rtmsg[6] = unix.RT_SCOPE_UNIVERSE
	rtmsg[7] = unix.RTN_UNICAST
	nativeEndian.PutUint32(rtmsg[8:12], 0)

	var attrs []byte
	attrs = append(attrs, encodeAttr(unix.RTA_DST, prefix.Addr)...)
	attrs = append(attrs, encodeAttrUint32(unix.RTA_PRIORITY, uint32(entry.Distance))...)

	switch len(entry.Nexthops) {
	case 0:
		// floating prefix with no forwarding information; DST/PRIORITY only.
	case 1:
		nhAttrs, err := nexthopAttrs(entry.Nexthops[0], resolve)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, nhAttrs...)
	default:
		var multipath []byte
		for _, nh := range entry.Nexthops {
			ifindex := 0
			var nested []byte
			if nh.IPv4Address != "" {
				ip := net.ParseIP(nh.IPv4Address).To4()
				nested = encodeAttr(unix.RTA_GATEWAY, ip)
			}
			if nh.Interface != "" {
				idx, ok := resolve(nh.Interface)
				if !ok {
					return nil, unknownInterfaceError(nh.Interface)
				}
				ifindex = idx
			}
			multipath = append(multipath, encodeRtnexthop(int32(ifindex), nested)...)
		}
		attrs = append(attrs, encodeAttr(unix.RTA_MULTIPATH, multipath)...)
	}

	total := nlmsgAlign(nlmsghdrLen) + len(rtmsg) + len(attrs)
	hdr := encodeNlmsghdr(uint32(total), msgType, flags, seq, 0)

	msg := make([]byte, 0, total)
	msg = append(msg, hdr...)
	msg = append(msg, rtmsg...)
	msg = append(msg, attrs...)
	return msg, nil
}

func nexthopAttrs(nh rib.Nexthop, resolve IfindexResolver) ([]byte, error) {
	var out []byte
	if nh.IPv4Address != "" {
		ip := net.ParseIP(nh.IPv4Address).To4()
		out = append(out, encodeAttr(unix.RTA_GATEWAY, ip)...)
	}
	if nh.Interface != "" {
		idx, ok := resolve(nh.Interface)
		if !ok {
			return nil, unknownInterfaceError(nh.Interface)
		}
		out = append(out, encodeAttrUint32(unix.RTA_OIF, uint32(idx))...)
	}
	return out, nil
}
