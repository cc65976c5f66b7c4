// Package netlinkdrv implements the RIB's kernel-sync side: route
// install/uninstall over rtnetlink, plus link/address dump and live-event
// callbacks, on top of raw AF_NETLINK sockets.
//
// The wire structures (nlmsghdr, rtmsg, rtattr, rtnexthop) are hand-encoded
// rather than pulled from a netlink helper library, mirroring how the
// router this daemon is modeled on builds these messages by hand over raw
// byte buffers rather than through a higher-level netlink crate.
package netlinkdrv

import "encoding/binary"

var nativeEndian = binary.NativeEndian

const (
	nlmsgAlignTo = 4
	rtaAlignTo   = 4
	rtnhAlignTo  = 4

	nlmsghdrLen  = 16 // Len(4) Type(2) Flags(2) Seq(4) Pid(4)
	rtmsgLen     = 12 // Family,DstLen,SrcLen,Tos,Table,Protocol,Scope,Type (8) + Flags(4)
	rtattrLen    = 4  // Len(2) Type(2)
	rtnexthopLen = 8  // Len(2) Flags(1) Hops(1) Ifindex(4)

	// ourProtocol tags every route this daemon installs (RTPROT_* values
	// below 11 are reserved by the kernel for its own protocols).
	ourProtocol = 11
)

func align(n, to int) int { return (n + to - 1) &^ (to - 1) }

func nlmsgAlign(n int) int { return align(n, nlmsgAlignTo) }
func rtaAlign(n int) int   { return align(n, rtaAlignTo) }
func rtnhAlign(n int) int  { return align(n, rtnhAlignTo) }

// encodeNlmsghdr renders the 16-byte netlink message header.
func encodeNlmsghdr(length uint32, msgType, flags uint16, seq, pid uint32) []byte {
	buf := make([]byte, nlmsghdrLen)
	nativeEndian.PutUint32(buf[0:4], length)
	nativeEndian.PutUint16(buf[4:6], msgType)
	nativeEndian.PutUint16(buf[6:8], flags)
	nativeEndian.PutUint32(buf[8:12], seq)
	nativeEndian.PutUint32(buf[12:16], pid)
	return buf
}

func decodeNlmsghdr(buf []byte) (length uint32, msgType, flags uint16, seq, pid uint32) {
	length = nativeEndian.Uint32(buf[0:4])
	msgType = nativeEndian.Uint16(buf[4:6])
	flags = nativeEndian.Uint16(buf[6:8])
	seq = nativeEndian.Uint32(buf[8:12])
	pid = nativeEndian.Uint32(buf[12:16])
	return
}

// encodeAttr renders one rtattr: a 4-byte header (length, type) followed by
// data, padded to a 4-byte boundary.
func encodeAttr(rtaType uint16, data []byte) []byte {
	total := rtattrLen + len(data)
	buf := make([]byte, rtaAlign(total))
	nativeEndian.PutUint16(buf[0:2], uint16(total))
	nativeEndian.PutUint16(buf[2:4], rtaType)
	copy(buf[rtattrLen:], data)
	return buf
}

func encodeAttrUint32(rtaType uint16, v uint32) []byte {
	data := make([]byte, 4)
	nativeEndian.PutUint32(data, v)
	return encodeAttr(rtaType, data)
}

// attr is one decoded rtattr: its type and raw payload (header stripped).
type attr struct {
	Type uint16
	Data []byte
}

// decodeAttrs walks a buffer of back-to-back rtattrs, as carried in an
// rtmsg's payload or a nested RTA_MULTIPATH entry.
func decodeAttrs(buf []byte) []attr {
	var out []attr
	for len(buf) >= rtattrLen {
		length := nativeEndian.Uint16(buf[0:2])
		rtaType := nativeEndian.Uint16(buf[2:4])
		if int(length) < rtattrLen || int(length) > len(buf) {
			break
		}
		out = append(out, attr{Type: rtaType, Data: buf[rtattrLen:length]})
		buf = buf[rtaAlign(int(length)):]
	}
	return out
}

// encodeRtnexthop renders one RTA_MULTIPATH element: an 8-byte rtnexthop
// header followed by that hop's own nested attributes (typically a single
// RTA_GATEWAY).
func encodeRtnexthop(ifindex int32, nested []byte) []byte {
	total := rtnexthopLen + len(nested)
	buf := make([]byte, rtnhAlign(total))
	nativeEndian.PutUint16(buf[0:2], uint16(total))
	buf[2] = 0 // flags
	buf[3] = 0 // hops
	nativeEndian.PutUint32(buf[4:8], uint32(ifindex))
	copy(buf[rtnexthopLen:], nested)
	return buf
}
