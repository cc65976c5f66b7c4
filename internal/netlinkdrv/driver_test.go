package netlinkdrv

import (
	"errors"
	"net"
	"testing"

	"github.com/routerd/routerd/internal/rib"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

var errAckFailed = errors.New("ack failed")

type fakeSocket struct {
	sent   [][]byte
	ackErr error
	closed bool
}

func (f *fakeSocket) Send(msg []byte) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSocket) RecvAck(uint32) error { return f.ackErr }

func (f *fakeSocket) Dump(msg []byte, onMessage func(uint16, []byte)) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSocket) Close() error {
	f.closed = true
	return nil
}

func TestDriverInstallSendsNewrouteAndWaitsForAck(t *testing.T) {
	sock := &fakeSocket{}
	d := NewDriver(sock, -1, Callbacks{})

	prefix := rib.Prefix{Addr: net.ParseIP("192.0.2.0").To4(), Len: 24}
	entry := &rib.Entry{Distance: 10, Nexthops: []rib.Nexthop{{IPv4Address: "10.0.0.1"}}}

	require.NoError(t, d.Install(prefix, entry))
	require.Len(t, sock.sent, 1)

	_, msgType, flags, _, _ := decodeNlmsghdr(sock.sent[0])
	require.EqualValues(t, unix.RTM_NEWROUTE, msgType)
	require.True(t, flags&unix.NLM_F_CREATE != 0)
	require.True(t, flags&unix.NLM_F_REPLACE != 0)
}

func TestDriverUninstallSendsDelroute(t *testing.T) {
	sock := &fakeSocket{}
	d := NewDriver(sock, -1, Callbacks{})

	prefix := rib.Prefix{Addr: net.ParseIP("192.0.2.0").To4(), Len: 24}
	entry := &rib.Entry{Distance: 10, Nexthops: []rib.Nexthop{{IPv4Address: "10.0.0.1"}}}

	require.NoError(t, d.Uninstall(prefix, entry))
	require.Len(t, sock.sent, 1)

	_, msgType, _, _, _ := decodeNlmsghdr(sock.sent[0])
	require.EqualValues(t, unix.RTM_DELROUTE, msgType)
}

func TestDriverInstallPropagatesAckError(t *testing.T) {
	sock := &fakeSocket{ackErr: errAckFailed}
	d := NewDriver(sock, -1, Callbacks{})

	prefix := rib.Prefix{Addr: net.ParseIP("192.0.2.0").To4(), Len: 24}
	entry := &rib.Entry{Distance: 10, Nexthops: []rib.Nexthop{{IPv4Address: "10.0.0.1"}}}

	err := d.Install(prefix, entry)
	require.ErrorIs(t, err, errAckFailed)
}

func TestDispatchLinkEventRemembersIfindexAndInvokesCallback(t *testing.T) {
	var seen LinkEvent
	d := NewDriver(&fakeSocket{}, -1, Callbacks{
		AddLink: func(ev LinkEvent) { seen = ev },
	})

	payload := make([]byte, 16)
	payload[0] = unix.AF_UNSPEC
	nativeEndian.PutUint32(payload[4:8], 3) // ifindex
	nativeEndian.PutUint32(payload[8:12], unix.IFF_UP)
	nameAttr := encodeAttr(unix.IFLA_IFNAME, append([]byte("eth0"), 0))
	payload = append(payload, nameAttr...)

	d.dispatchMessage(unix.RTM_NEWLINK, payload)

	require.Equal(t, 3, seen.Index)
	require.Equal(t, "eth0", seen.Name)
	require.True(t, seen.Up)

	idx, ok := d.resolveIfindex("eth0")
	require.True(t, ok)
	require.Equal(t, 3, idx)
}

func TestDispatchAddressEventInvokesIPv4Callback(t *testing.T) {
	var seen AddressEvent
	d := NewDriver(&fakeSocket{}, -1, Callbacks{
		AddIPv4Address: func(ev AddressEvent) { seen = ev },
	})

	payload := make([]byte, 8)
	payload[0] = unix.AF_INET
	payload[1] = 24
	nativeEndian.PutUint32(payload[4:8], 3)
	addrAttr := encodeAttr(unix.IFA_ADDRESS, net.ParseIP("192.0.2.1").To4())
	payload = append(payload, addrAttr...)

	d.dispatchMessage(unix.RTM_NEWADDR, payload)

	require.Equal(t, 3, seen.Index)
	require.Equal(t, 24, seen.PrefixLen)
	require.Equal(t, "192.0.2.1", seen.Address)
}
