package netlinkdrv

import (
	"net"
	"testing"

	"github.com/routerd/routerd/internal/rib"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func resolveNone(string) (int, bool) { return 0, false }

func TestBuildRouteMessageSinglepathGateway(t *testing.T) {
	prefix := rib.Prefix{Addr: net.ParseIP("192.0.2.0").To4(), Len: 24}
	entry := &rib.Entry{
		Distance: 10,
		Nexthops: []rib.Nexthop{{IPv4Address: "10.0.0.1"}},
	}

	msg, err := buildRouteMessage(unix.RTM_NEWROUTE, 0, 1, prefix, entry, resolveNone)
	require.NoError(t, err)

	length, msgType, _, seq, _ := decodeNlmsghdr(msg)
	require.EqualValues(t, unix.RTM_NEWROUTE, msgType)
	require.Equal(t, uint32(1), seq)
	require.Equal(t, int(length), len(msg))

	payload := msg[nlmsgAlign(nlmsghdrLen)+rtmsgLen:]
	attrs := decodeAttrs(payload)

	byType := map[uint16][]byte{}
	for _, a := range attrs {
		byType[a.Type] = a.Data
	}

	require.Equal(t, []byte(net.ParseIP("192.0.2.0").To4()), byType[unix.RTA_DST])
	require.Equal(t, uint32(10), nativeEndian.Uint32(byType[unix.RTA_PRIORITY]))
	require.Equal(t, []byte(net.ParseIP("10.0.0.1").To4()), byType[unix.RTA_GATEWAY])
}

func TestBuildRouteMessageMultipath(t *testing.T) {
	prefix := rib.Prefix{Addr: net.ParseIP("198.51.100.0").To4(), Len: 24}
	entry := &rib.Entry{
		Distance: 1,
		Nexthops: []rib.Nexthop{
			{IPv4Address: "10.0.0.1"},
			{IPv4Address: "10.0.0.2"},
		},
	}

	msg, err := buildRouteMessage(unix.RTM_NEWROUTE, 0, 2, prefix, entry, resolveNone)
	require.NoError(t, err)

	payload := msg[nlmsgAlign(nlmsghdrLen)+rtmsgLen:]
	attrs := decodeAttrs(payload)

	var multipath []byte
	for _, a := range attrs {
		if a.Type == unix.RTA_MULTIPATH {
			multipath = a.Data
		}
	}
	require.NotNil(t, multipath)

	nested := decodeAttrs(multipath[rtnexthopLen:])
	require.NotEmpty(t, nested)
	require.Equal(t, []byte(net.ParseIP("10.0.0.1").To4()), nested[0].Data)
}

func TestBuildRouteMessageUnknownInterfaceErrors(t *testing.T) {
	prefix := rib.Prefix{Addr: net.ParseIP("192.0.2.0").To4(), Len: 24}
	entry := &rib.Entry{Distance: 1, Nexthops: []rib.Nexthop{{Interface: "eth9"}}}

	_, err := buildRouteMessage(unix.RTM_NEWROUTE, 0, 1, prefix, entry, resolveNone)
	require.Error(t, err)
}
