//go:build !unix

package transport

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"
)

// pollInterval bounds how long a read may wait on platforms without
// MSG_DONTWAIT.
const pollInterval = time.Millisecond

func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}

func (r *Receiver) readOnce(buf []byte) (int, *net.UDPAddr, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return 0, nil, err
	}
	n, from, err := r.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, nil, ErrWouldBlock
		}
		return 0, nil, err
	}
	return n, from, nil
}
