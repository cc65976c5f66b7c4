package netlinkdrv

import (
	"syscall"

	"github.com/routerd/routerd/internal/rerror"
	"golang.org/x/sys/unix"
)

const eventGroups = unix.RTMGRP_LINK |
	unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_IPV4_ROUTE |
	unix.RTMGRP_IPV6_IFADDR | unix.RTMGRP_IPV6_ROUTE

// netlinkSocket is the production socket implementation: a blocking
// AF_NETLINK/NETLINK_ROUTE socket used for request/ACK exchanges and dump
// reads.
type netlinkSocket struct {
	fd int
}

// OpenRequestSocket opens the blocking socket used for install/uninstall
// and dump requests, bound with no multicast groups.
func OpenRequestSocket() (*netlinkSocket, error) {
	return openSocket(0)
}

// OpenEventSocket opens a non-blocking socket bound to the link/address/
// route multicast groups, returning its raw fd for event-loop
// registration.
func OpenEventSocket() (int, error) {
	sock, err := openSocket(eventGroups)
	if err != nil {
		return 0, err
	}
	if err := unix.SetNonblock(sock.fd, true); err != nil {
		unix.Close(sock.fd)
		return 0, rerror.Kernel("failed to set netlink event socket non-blocking", err)
	}
	return sock.fd, nil
}

func openSocket(groups uint32) (*netlinkSocket, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, rerror.Kernel("failed to open netlink socket", err)
	}
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: 0, Groups: groups}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, rerror.Kernel("failed to bind netlink socket", err)
	}
	return &netlinkSocket{fd: fd}, nil
}

func (s *netlinkSocket) Send(msg []byte) error {
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	return unix.Sendto(s.fd, msg, 0, sa)
}

// RecvAck reads until it sees an NLMSG_ERROR response for seq; its Error
// field is 0 for a plain ACK, negative errno otherwise.
func (s *netlinkSocket) RecvAck(seq uint32) error {
	buf := make([]byte, 8192)
	for {
		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			return rerror.Kernel("netlink recv failed", err)
		}
		msg := buf[:n]
		for len(msg) >= nlmsghdrLen {
			length, msgType, _, respSeq, _ := decodeNlmsghdr(msg)
			if int(length) < nlmsghdrLen || int(length) > len(msg) {
				break
			}
			payload := msg[nlmsghdrLen:length]
			if respSeq == seq && msgType == unix.NLMSG_ERROR {
				if len(payload) < 4 {
					return rerror.Kernel("truncated netlink ack", nil)
				}
				errno := int32(nativeEndian.Uint32(payload[0:4]))
				if errno == 0 {
					return nil
				}
				return rerror.Kernel("netlink request failed", syscall.Errno(-errno))
			}
			msg = msg[nlmsgAlign(int(length)):]
		}
	}
}

// Dump sends msg and reads responses until a terminating NLMSG_DONE,
// invoking onMessage for every message in between.
func (s *netlinkSocket) Dump(msg []byte, onMessage func(msgType uint16, payload []byte)) error {
	if err := s.Send(msg); err != nil {
		return err
	}
	buf := make([]byte, 16384)
	for {
		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			return rerror.Kernel("netlink dump recv failed", err)
		}
		data := buf[:n]
		for len(data) >= nlmsghdrLen {
			length, msgType, _, _, _ := decodeNlmsghdr(data)
			if int(length) < nlmsghdrLen || int(length) > len(data) {
				return nil
			}
			if msgType == unix.NLMSG_DONE {
				return nil
			}
			if msgType == unix.NLMSG_ERROR {
				payload := data[nlmsghdrLen:length]
				if len(payload) >= 4 {
					if errno := int32(nativeEndian.Uint32(payload[0:4])); errno != 0 {
						return rerror.Kernel("netlink dump failed", syscall.Errno(-errno))
					}
				}
				return nil
			}
			onMessage(msgType, data[nlmsghdrLen:length])
			data = data[nlmsgAlign(int(length)):]
		}
	}
}

func (s *netlinkSocket) Close() error {
	return unix.Close(s.fd)
}
