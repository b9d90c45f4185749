//go:build unix

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrControl sets SO_REUSEADDR before bind
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

// readOnce performs a single MSG_DONTWAIT recvfrom. Returning true from the
// read callback tells the runtime poller not to park on EAGAIN.
func (r *Receiver) readOnce(buf []byte) (int, *net.UDPAddr, error) {
	var (
		n       int
		from    unix.Sockaddr
		recvErr error
	)
	err := r.raw.Read(func(fd uintptr) bool {
		n, from, recvErr = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
		return true
	})
	if err != nil {
		return 0, nil, err
	}
	if recvErr == unix.EAGAIN || recvErr == unix.EWOULDBLOCK {
		return 0, nil, ErrWouldBlock
	}
	if recvErr != nil {
		return 0, nil, recvErr
	}

	var addr *net.UDPAddr
	if sa, ok := from.(*unix.SockaddrInet4); ok {
		addr = &net.UDPAddr{IP: net.IPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]), Port: sa.Port}
	}
	return n, addr, nil
}
