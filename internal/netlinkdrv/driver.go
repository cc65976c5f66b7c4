package netlinkdrv

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/routerd/routerd/internal/evloop"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/rerror"
	"github.com/routerd/routerd/internal/rib"
	"golang.org/x/sys/unix"
)

func unknownInterfaceError(name string) error {
	return rerror.Kernel("unknown interface "+name, nil)
}

// socket is the raw send/recv surface a Driver needs; the production
// implementation wraps an AF_NETLINK socket, tests substitute a recorder.
type socket interface {
	Send(msg []byte) error
	RecvAck(seq uint32) error
	Dump(msg []byte, onMessage func(msgType uint16, payload []byte)) error
	Close() error
}

// LinkEvent reports a link appearing or disappearing.
type LinkEvent struct {
	Index int
	Name  string
	Up    bool
}

// AddressEvent reports an address being added to or removed from a link.
type AddressEvent struct {
	Index     int
	Address   string
	PrefixLen int
}

// Callbacks are invoked as dump responses and live events are parsed. Any
// left nil are simply not invoked.
type Callbacks struct {
	AddLink           func(LinkEvent)
	DeleteLink        func(LinkEvent)
	AddIPv4Address    func(AddressEvent)
	DeleteIPv4Address func(AddressEvent)
	AddIPv6Address    func(AddressEvent)
	DeleteIPv6Address func(AddressEvent)
}

// Driver is the kernel driver described for the RIB: route install/
// uninstall over rtnetlink, plus link/address dump and event delivery.
// It implements rib.Driver.
type Driver struct {
	requestSock socket
	eventFD     int

	mu      sync.Mutex
	ifindex map[string]int

	seq       uint32
	callbacks Callbacks
}

var _ rib.Driver = (*Driver)(nil)

// NewDriver wraps an already-open request socket used for
// install/uninstall/dump and records the (already-open, non-blocking) event
// socket fd for the caller to plug into the event loop with AttachEvents.
func NewDriver(requestSock socket, eventFD int, callbacks Callbacks) *Driver {
	return &Driver{
		requestSock: requestSock,
		eventFD:     eventFD,
		ifindex:     make(map[string]int),
		callbacks:   callbacks,
	}
}

// Open opens the request and event AF_NETLINK sockets and returns a ready
// Driver. Call AttachEvents afterward to plug the event socket into the
// event loop.
func Open(callbacks Callbacks) (*Driver, error) {
	requestSock, err := OpenRequestSocket()
	if err != nil {
		return nil, err
	}
	eventFD, err := OpenEventSocket()
	if err != nil {
		requestSock.Close()
		return nil, err
	}
	return NewDriver(requestSock, eventFD, callbacks), nil
}

// Close releases the driver's request socket and event fd.
func (d *Driver) Close() error {
	if err := d.requestSock.Close(); err != nil {
		return err
	}
	return unix.Close(d.eventFD)
}

// AttachEvents registers the event socket's fd with the loop so live
// RTM_NEWLINK/RTM_NEWADDR/RTM_DELADDR notifications are parsed as they
// arrive.
func (d *Driver) AttachEvents(loop *evloop.Loop) error {
	return loop.RegisterFD(d.eventFD, false, func(fd int, _ evloop.FDEvent) error {
		buf := make([]byte, 16384)
		n, err := unix.Read(fd, buf)
		if err != nil {
			return rerror.Kernel("netlink event read failed", err)
		}
		d.handleEventDatagram(buf[:n])
		return nil
	})
}

func (d *Driver) nextSeq() uint32 {
	return atomic.AddUint32(&d.seq, 1)
}

// resolveIfindex looks up a cached ifindex, populated by prior link dumps
// and events.
func (d *Driver) resolveIfindex(name string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.ifindex[name]
	return idx, ok
}

func (d *Driver) rememberIfindex(name string, index int) {
	d.mu.Lock()
	d.ifindex[name] = index
	d.mu.Unlock()
}

// Install sends an RTM_NEWROUTE for entry on prefix with
// CREATE|REPLACE|REQUEST flags and waits for its ACK.
func (d *Driver) Install(prefix rib.Prefix, entry *rib.Entry) error {
	seq := d.nextSeq()
	flags := uint16(unix.NLM_F_REQUEST | unix.NLM_F_CREATE | unix.NLM_F_REPLACE | unix.NLM_F_ACK)
	msg, err := buildRouteMessage(unix.RTM_NEWROUTE, flags, seq, prefix, entry, d.resolveIfindex)
	if err != nil {
		return err
	}
	if err := d.requestSock.Send(msg); err != nil {
		return rerror.Kernel("netlink route install send failed", err)
	}
	if err := d.requestSock.RecvAck(seq); err != nil {
		logger.Error("netlink route install failed", logger.Err(err))
		return err
	}
	return nil
}

// Uninstall sends an RTM_DELROUTE for entry on prefix and waits for its
// ACK.
func (d *Driver) Uninstall(prefix rib.Prefix, entry *rib.Entry) error {
	seq := d.nextSeq()
	flags := uint16(unix.NLM_F_REQUEST | unix.NLM_F_ACK)
	msg, err := buildRouteMessage(unix.RTM_DELROUTE, flags, seq, prefix, entry, d.resolveIfindex)
	if err != nil {
		return err
	}
	if err := d.requestSock.Send(msg); err != nil {
		return rerror.Kernel("netlink route uninstall send failed", err)
	}
	if err := d.requestSock.RecvAck(seq); err != nil {
		logger.Error("netlink route uninstall failed", logger.Err(err))
		return err
	}
	return nil
}

// handleEventDatagram parses one or more netlink messages out of a
// datagram read from the event socket and invokes the matching callback.
func (d *Driver) handleEventDatagram(buf []byte) {
	for len(buf) >= nlmsghdrLen {
		length, msgType, _, _, _ := decodeNlmsghdr(buf)
		if int(length) < nlmsghdrLen || int(length) > len(buf) {
			return
		}
		payload := buf[nlmsghdrLen:length]
		d.dispatchMessage(uint16(msgType), payload)
		buf = buf[nlmsgAlign(int(length)):]
	}
}

func (d *Driver) dispatchMessage(msgType uint16, payload []byte) {
	switch msgType {
	case unix.RTM_NEWLINK, unix.RTM_DELLINK:
		if len(payload) < rtmsgLen {
			return
		}
		// ifinfomsg shares its leading ifindex field position with rtmsg's
		// table byte offset in this trimmed-down parse; attrs start after
		// the fixed ifinfomsg header (16 bytes: family,pad,type,index,flags,change).
		if len(payload) < 16 {
			return
		}
		index := int(nativeEndian.Uint32(payload[4:8]))
		flags := nativeEndian.Uint32(payload[8:12])
		name := ""
		for _, a := range decodeAttrs(payload[16:]) {
			if a.Type == unix.IFLA_IFNAME {
				name = cString(a.Data)
			}
		}
		if name != "" {
			d.rememberIfindex(name, index)
		}
		ev := LinkEvent{Index: index, Name: name, Up: flags&unix.IFF_UP != 0}
		if msgType == unix.RTM_NEWLINK && d.callbacks.AddLink != nil {
			d.callbacks.AddLink(ev)
		} else if msgType == unix.RTM_DELLINK && d.callbacks.DeleteLink != nil {
			d.callbacks.DeleteLink(ev)
		}

	case unix.RTM_NEWADDR, unix.RTM_DELADDR:
		if len(payload) < 8 {
			return
		}
		family := payload[0]
		prefixLen := int(payload[1])
		index := int(nativeEndian.Uint32(payload[4:8]))
		var address string
		for _, a := range decodeAttrs(payload[8:]) {
			if a.Type == unix.IFA_ADDRESS {
				address = formatIP(a.Data)
			}
		}
		ev := AddressEvent{Index: index, Address: address, PrefixLen: prefixLen}
		switch {
		case family == unix.AF_INET && msgType == unix.RTM_NEWADDR && d.callbacks.AddIPv4Address != nil:
			d.callbacks.AddIPv4Address(ev)
		case family == unix.AF_INET && msgType == unix.RTM_DELADDR && d.callbacks.DeleteIPv4Address != nil:
			d.callbacks.DeleteIPv4Address(ev)
		case family == unix.AF_INET6 && msgType == unix.RTM_NEWADDR && d.callbacks.AddIPv6Address != nil:
			d.callbacks.AddIPv6Address(ev)
		case family == unix.AF_INET6 && msgType == unix.RTM_DELADDR && d.callbacks.DeleteIPv6Address != nil:
			d.callbacks.DeleteIPv6Address(ev)
		}
	}
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func formatIP(b []byte) string {
	ip := make(net.IP, len(b))
	copy(ip, b)
	return ip.String()
}
