package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/transport"
	"go.uber.org/zap"
)

const (
	// DefaultScanTimeout is how long Scan listens for replies
	DefaultScanTimeout = 3 * time.Second

	// DefaultPollInterval is how often the receiver is drained while scanning
	DefaultPollInterval = 50 * time.Millisecond
)

// Scanner runs a timed search and collects the peers that reply or announce
// themselves while it listens
type Scanner struct {
	// Timeout is how long to listen after sending the M-SEARCH
	Timeout time.Duration

	// PollInterval is how often the receiver is drained
	PollInterval time.Duration

	session *Session
	table   *PeerTable
	logger  *zap.Logger
}

// NewScanner creates a scanner and its session. opts.Consumer, if set, still
// receives every datagram.
func NewScanner(opts Options) *Scanner {
	sc := &Scanner{
		Timeout:      DefaultScanTimeout,
		PollInterval: DefaultPollInterval,
		table:        NewPeerTable(),
	}
	opts.Consumer = Chain(sc.observe, opts.Consumer)
	sc.session = NewSession(opts)
	sc.logger = sc.session.base.Named("scanner")
	return sc
}

// Session returns the underlying session
func (sc *Scanner) Session() *Session {
	return sc.session
}

// Peers returns the table the scanner fills
func (sc *Scanner) Peers() *PeerTable {
	return sc.table
}

func (sc *Scanner) observe(dg transport.Datagram, pkt *protocol.Packet) {
	if peer, isNew := sc.table.Observe(dg.From, pkt); isNew {
		sc.logger.Info("Discovered peer",
			zap.String("usn", peer.USN),
			zap.String("location", peer.Location),
			zap.Stringer("from", dg.From),
		)
	}
}

// Scan searches for target and returns the peers seen before the timeout.
// The session is opened if needed and left open.
func (sc *Scanner) Scan(ctx context.Context, target string) ([]*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
	defer cancel()

	if err := sc.start(target); err != nil {
		return nil, err
	}

	err := sc.poll(ctx, func() bool { return false })
	if err != nil {
		return nil, err
	}
	return sc.table.Peers(), nil
}

// WaitForPeer searches for target and returns as soon as a peer with the
// given USN is seen
func (sc *Scanner) WaitForPeer(ctx context.Context, target, usn string) (*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
	defer cancel()

	if err := sc.start(target); err != nil {
		return nil, err
	}

	var found *Peer
	err := sc.poll(ctx, func() bool {
		p, ok := sc.table.Get(usn)
		if ok {
			found = p
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("peer %s not found within %s", usn, sc.Timeout)
	}
	return found, nil
}

func (sc *Scanner) start(target string) error {
	if err := sc.session.Open(); err != nil {
		return fmt.Errorf("failed to open receiver: %w", err)
	}
	results, err := sc.session.Search(target)
	if err != nil {
		return fmt.Errorf("failed to send M-SEARCH: %w", err)
	}
	if len(results) > 0 && transport.Failed(results) == len(results) {
		return fmt.Errorf("M-SEARCH failed on all %d interfaces: %w", len(results), results[0].Err)
	}
	return nil
}

// poll drains the receiver every PollInterval until ctx is done or done
// reports true
func (sc *Scanner) poll(ctx context.Context, done func() bool) error {
	ticker := time.NewTicker(sc.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := sc.session.Drain(); err != nil {
			return err
		}
		if done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ScanForPeers runs a one-shot scan with the given timeout using the default
// interfaces and sockets
func ScanForPeers(ctx context.Context, opts Options, target string, timeout time.Duration) ([]*Peer, error) {
	sc := NewScanner(opts)
	sc.Timeout = timeout
	defer sc.session.Close()
	return sc.Scan(ctx, target)
}
