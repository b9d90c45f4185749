package transport

import (
	"errors"
	"fmt"
	"net"

	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/ssdp"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"
)

// ErrEmptyPayload is returned when asked to send nothing.
var ErrEmptyPayload = errors.New("payload is empty")

// SendResult is the outcome of sending on one interface
type SendResult struct {
	Interface ssdp.Interface
	Err       error
}

// OK reports whether the send succeeded
func (r SendResult) OK() bool {
	return r.Err == nil
}

// Failed counts the failed results
func Failed(results []SendResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Sender writes datagrams to the SSDP group from a specific interface
type Sender struct {
	logger *zap.Logger
}

// NewSender creates a sender
func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logging.OrNop(logger).Named("transport")}
}

// SendTo sends payload to 239.255.255.250:port from iface. A new socket is
// bound to iface.Addr for this call and closed before returning.
func (s *Sender) SendTo(iface ssdp.Interface, port int, payload []byte) error {
	if err := validateSend(iface, port, payload); err != nil {
		s.logger.Error("Rejected send", zap.Stringer("iface", iface), zap.Error(err))
		return err
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: iface.Addr.NetIP()})
	if err != nil {
		s.logger.Error("bind failed", zap.Stringer("iface", iface), zap.Error(err))
		return ssdp.NewTransportError("bind", iface.Name, err)
	}
	defer conn.Close()

	p := ipv4.NewPacketConn(conn)
	if err := p.SetMulticastLoopback(false); err != nil {
		s.logger.Error("setsockopt IP_MULTICAST_LOOP failed", zap.Stringer("iface", iface), zap.Error(err))
		return ssdp.NewTransportError("setsockopt", iface.Name, err)
	}

	// Binding picks the source address; the outgoing multicast interface is
	// pinned as well when the OS still knows the interface by name.
	if ifi, err := net.InterfaceByName(iface.Name); err == nil {
		if err := p.SetMulticastInterface(ifi); err != nil {
			s.logger.Error("setsockopt IP_MULTICAST_IF failed", zap.Stringer("iface", iface), zap.Error(err))
			return ssdp.NewTransportError("setsockopt", iface.Name, err)
		}
	} else {
		s.logger.Debug("Interface not found by name, relying on source bind",
			zap.String("iface", iface.Name),
			zap.Error(err),
		)
	}

	dst := &net.UDPAddr{IP: ssdp.MulticastGroup.NetIP(), Port: port}
	if _, err := p.WriteTo(payload, nil, dst); err != nil {
		s.logger.Error("sendto failed", zap.Stringer("iface", iface), zap.Error(err))
		return ssdp.NewTransportError("send", iface.Name, err)
	}

	s.logger.Debug("Sent datagram",
		zap.Stringer("iface", iface),
		zap.String("dst", dst.String()),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// SendAll sends payload on every interface in order. Every interface is
// attempted regardless of earlier failures.
func (s *Sender) SendAll(ifaces []ssdp.Interface, port int, payload []byte) []SendResult {
	results := make([]SendResult, 0, len(ifaces))
	for _, iface := range ifaces {
		results = append(results, SendResult{
			Interface: iface,
			Err:       s.SendTo(iface, port, payload),
		})
	}
	return results
}

// validateSend rejects requests that cannot be sent before any socket exists
func validateSend(iface ssdp.Interface, port int, payload []byte) error {
	if iface.Name == "" {
		return ssdp.NewConstructionError("send", "", ssdp.ErrEmptyInterfaceName)
	}
	if len(payload) == 0 {
		return ssdp.NewConstructionError("send", iface.Name, ErrEmptyPayload)
	}
	if port < 1 || port > 65535 {
		return ssdp.NewConstructionError("send", iface.Name, fmt.Errorf("invalid port %d", port))
	}
	return nil
}
