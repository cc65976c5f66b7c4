package netlinkdrv

import "golang.org/x/sys/unix"

// buildDumpMessage renders a generic rtgenmsg-bodied dump request (the
// shape RTM_GETLINK/RTM_GETADDR/RTM_GETROUTE all share).
func buildDumpMessage(msgType uint16, seq uint32, family uint8) []byte {
	const rtgenmsgLen = 1
	body := []byte{family}
	total := nlmsgAlign(nlmsghdrLen) + rtgenmsgLen
	flags := uint16(unix.NLM_F_REQUEST | unix.NLM_F_ROOT | unix.NLM_F_MATCH)
	hdr := encodeNlmsghdr(uint32(total), msgType, flags, seq, 0)

	msg := make([]byte, 0, total)
	msg = append(msg, hdr...)
	msg = append(msg, body...)
	return msg
}

// GetLinksAll dumps every link, invoking AddLink for each one found and
// caching its ifindex for later nexthop resolution.
func (d *Driver) GetLinksAll() error {
	seq := d.nextSeq()
	msg := buildDumpMessage(unix.RTM_GETLINK, seq, unix.AF_UNSPEC)
	return d.requestSock.Dump(msg, d.dispatchMessage)
}

// GetAddressesAll dumps every address for the given address family
// (unix.AF_INET or unix.AF_INET6), invoking the matching Add*Address
// callback for each.
func (d *Driver) GetAddressesAll(family uint8) error {
	seq := d.nextSeq()
	msg := buildDumpMessage(unix.RTM_GETADDR, seq, family)
	return d.requestSock.Dump(msg, d.dispatchMessage)
}
