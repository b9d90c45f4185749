package discovery

import (
	"errors"

	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/netif"
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/ssdp"
	"github.com/muurk/ssdp/internal/transport"
	"go.uber.org/zap"
)

// ErrNotOpen is returned by Pump before Open has succeeded
var ErrNotOpen = errors.New("session is not open")

// Enumerator lists the interfaces to send on
type Enumerator interface {
	Refresh() ([]ssdp.Interface, error)
}

// Sender sends one datagram from one interface
type Sender interface {
	SendTo(iface ssdp.Interface, port int, payload []byte) error
}

// Receiver reads the shared multicast socket without blocking
type Receiver interface {
	Receive() (transport.Datagram, error)
	Close() error
}

// ReceiverOpener opens the session's receiver
type ReceiverOpener func(port int, logger *zap.Logger) (Receiver, error)

// Consumer is called for every received datagram. pkt is nil when the
// datagram is not a recognised SSDP message.
type Consumer func(dg transport.Datagram, pkt *protocol.Packet)

// Options configures a Session. Zero-valued dependencies are replaced with
// the real implementations.
type Options struct {
	Port          int               // Multicast port, DefaultPort when zero
	Header        ssdp.HeaderConfig // Copied, later changes are not seen
	MaxInterfaces int               // Interface limit, ssdp.DefaultMaxInterfaces when zero

	Enumerator   Enumerator
	Sender       Sender
	OpenReceiver ReceiverOpener
	Parser       *protocol.Parser
	Consumer     Consumer
	Logger       *zap.Logger
}

// Session announces, searches and receives SSDP traffic
type Session struct {
	port       int
	header     ssdp.HeaderConfig
	enumerator Enumerator
	sender     Sender
	openRecv   ReceiverOpener
	parser     *protocol.Parser
	consumer   Consumer
	base       *zap.Logger
	logger     *zap.Logger

	receiver   Receiver
	interfaces []ssdp.Interface
}

// NewSession creates a session. It opens nothing until Open is called.
func NewSession(opts Options) *Session {
	logger := logging.OrNop(opts.Logger)

	s := &Session{
		port:       opts.Port,
		header:     opts.Header,
		enumerator: opts.Enumerator,
		sender:     opts.Sender,
		openRecv:   opts.OpenReceiver,
		parser:     opts.Parser,
		consumer:   opts.Consumer,
		base:       logger,
		logger:     logger.Named("session"),
	}
	if s.port == 0 {
		s.port = ssdp.DefaultPort
	}
	if s.enumerator == nil {
		s.enumerator = netif.NewEnumerator(opts.MaxInterfaces, logger)
	}
	if s.sender == nil {
		s.sender = transport.NewSender(logger)
	}
	if s.openRecv == nil {
		s.openRecv = openTransportReceiver
	}
	if s.parser == nil {
		s.parser = protocol.NewParser(logger)
	}
	return s
}

func openTransportReceiver(port int, logger *zap.Logger) (Receiver, error) {
	r, err := transport.OpenReceiver(port, logger)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Port returns the multicast port
func (s *Session) Port() int {
	return s.port
}

// Header returns the session's header configuration
func (s *Session) Header() ssdp.HeaderConfig {
	return s.header
}

// Open opens the receiver. Calling Open on an open session does nothing.
func (s *Session) Open() error {
	if s.receiver != nil {
		return nil
	}
	r, err := s.openRecv(s.port, s.base)
	if err != nil {
		return err
	}
	s.receiver = r
	s.logger.Info("Session opened", zap.Int("port", s.port))
	return nil
}

// Close releases the receiver
func (s *Session) Close() error {
	if s.receiver == nil {
		return nil
	}
	err := s.receiver.Close()
	s.receiver = nil
	s.logger.Info("Session closed")
	return err
}

// Interfaces returns a copy of the interfaces found by the last Announce or
// Search
func (s *Session) Interfaces() []ssdp.Interface {
	out := make([]ssdp.Interface, len(s.interfaces))
	copy(out, s.interfaces)
	return out
}

// refresh replaces the interface list. On failure the previous list is
// dropped as well.
func (s *Session) refresh() ([]ssdp.Interface, error) {
	ifaces, err := s.enumerator.Refresh()
	if err != nil {
		s.interfaces = nil
		s.logger.Error("Interface refresh failed", zap.Error(err))
		return nil, err
	}
	s.interfaces = ifaces
	return ifaces, nil
}

// Announce sends an ssdp:alive NOTIFY on every interface. Each NOTIFY
// carries that interface's address in LOCATION unless the header
// configuration overrides the host.
func (s *Session) Announce() ([]transport.SendResult, error) {
	ifaces, err := s.refresh()
	if err != nil {
		return nil, err
	}

	results := make([]transport.SendResult, 0, len(ifaces))
	for _, iface := range ifaces {
		msg, err := protocol.BuildNotify(s.header, iface, s.port)
		if err != nil {
			s.logger.Error("Failed to build NOTIFY", zap.Stringer("iface", iface), zap.Error(err))
			results = append(results, transport.SendResult{Interface: iface, Err: err})
			continue
		}
		results = append(results, transport.SendResult{
			Interface: iface,
			Err:       s.sender.SendTo(iface, s.port, msg),
		})
	}

	s.logResults("NOTIFY", results)
	return results, nil
}

// Search sends one M-SEARCH for target on every interface. An empty target
// searches for the configured search target.
func (s *Session) Search(target string) ([]transport.SendResult, error) {
	if target == "" {
		target = s.header.SearchTarget
	}

	ifaces, err := s.refresh()
	if err != nil {
		return nil, err
	}

	msg, err := protocol.BuildMSearch(target, s.port)
	if err != nil {
		s.logger.Error("Failed to build M-SEARCH", zap.String("st", target), zap.Error(err))
		return nil, err
	}

	results := make([]transport.SendResult, 0, len(ifaces))
	for _, iface := range ifaces {
		results = append(results, transport.SendResult{
			Interface: iface,
			Err:       s.sender.SendTo(iface, s.port, msg),
		})
	}

	s.logResults("M-SEARCH", results)
	return results, nil
}

// Pump reads at most one datagram. It returns false with a nil error when
// nothing was queued, and never waits.
func (s *Session) Pump() (bool, error) {
	if s.receiver == nil {
		return false, ErrNotOpen
	}

	dg, err := s.receiver.Receive()
	if errors.Is(err, transport.ErrWouldBlock) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	logging.LogRawBytes(s.logger, "Received datagram", dg.Data, zap.Stringer("from", dg.From))

	pkt, _ := s.parser.Parse(dg.Data)
	if s.consumer == nil {
		s.logger.Warn("No consumer registered, dropping datagram", zap.Int("bytes", len(dg.Data)))
		return true, nil
	}
	s.consumer(dg, pkt)
	return true, nil
}

// Drain pumps until the receiver has nothing queued and returns the number of
// datagrams handled.
func (s *Session) Drain() (int, error) {
	n := 0
	for {
		ok, err := s.Pump()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

func (s *Session) logResults(kind string, results []transport.SendResult) {
	failed := transport.Failed(results)
	fields := []zap.Field{
		zap.String("message", kind),
		zap.Int("interfaces", len(results)),
		zap.Int("failed", failed),
	}
	if failed > 0 {
		s.logger.Warn("Send completed with failures", fields...)
		return
	}
	s.logger.Debug("Send completed", fields...)
}
