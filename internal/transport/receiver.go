package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/ssdp"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"
)

// ErrWouldBlock is returned by Receive when no datagram is queued.
var ErrWouldBlock = errors.New("no datagram available")

// Datagram is one received UDP payload
type Datagram struct {
	Data       []byte       // At most ssdp.MaxDatagramSize bytes
	From       *net.UDPAddr // Sender address
	ReceivedAt time.Time
}

// Receiver owns the shared multicast receiving socket
type Receiver struct {
	conn   *net.UDPConn
	raw    syscall.RawConn
	logger *zap.Logger
}

// OpenReceiver binds the wildcard address on port and joins the SSDP group.
// Port 0 picks an ephemeral port.
func OpenReceiver(port int, logger *zap.Logger) (*Receiver, error) {
	logger = logging.OrNop(logger).Named("transport")

	if port < 0 || port > 65535 {
		return nil, ssdp.NewConstructionError("listen", "", fmt.Errorf("invalid port %d", port))
	}

	lc := net.ListenConfig{Control: reuseAddrControl}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		logger.Error("Failed to bind receiver", zap.Int("port", port), zap.Error(err))
		return nil, ssdp.NewTransportError("bind", "", err)
	}
	conn := pc.(*net.UDPConn)

	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(nil, &net.UDPAddr{IP: ssdp.MulticastGroup.NetIP()}); err != nil {
		conn.Close()
		logger.Error("Failed to join multicast group",
			zap.String("group", ssdp.MulticastAddr),
			zap.Error(err),
		)
		return nil, ssdp.NewTransportError("join", "", err)
	}

	r, err := newReceiver(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Receiver opened",
		zap.String("addr", conn.LocalAddr().String()),
		zap.String("group", ssdp.MulticastAddr),
	)
	return r, nil
}

// newReceiver wraps an already bound socket
func newReceiver(conn *net.UDPConn, logger *zap.Logger) (*Receiver, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, ssdp.NewTransportError("socket", "", err)
	}
	return &Receiver{conn: conn, raw: raw, logger: logging.OrNop(logger)}, nil
}

// Receive reads one queued datagram without waiting. It returns
// ErrWouldBlock immediately when the socket has nothing to read.
func (r *Receiver) Receive() (Datagram, error) {
	buf := make([]byte, ssdp.MaxDatagramSize)
	n, from, err := r.readOnce(buf)
	if err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return Datagram{}, ErrWouldBlock
		}
		r.logger.Error("recvfrom failed", zap.Error(err))
		return Datagram{}, ssdp.NewTransportError("recv", "", err)
	}

	return Datagram{
		Data:       buf[:n],
		From:       from,
		ReceivedAt: time.Now(),
	}, nil
}

// LocalAddr returns the bound address
func (r *Receiver) LocalAddr() *net.UDPAddr {
	return r.conn.LocalAddr().(*net.UDPAddr)
}

// Close releases the socket
func (r *Receiver) Close() error {
	return r.conn.Close()
}
