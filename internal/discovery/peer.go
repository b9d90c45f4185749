package discovery

import (
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/ssdp"
)

// DefaultMaxAge is used for peers whose messages carry no usable max-age
const DefaultMaxAge = 1800 * time.Second

// Peer represents an SSDP service seen on the network
type Peer struct {
	// USN uniquely identifies the service (e.g., "uuid:1234::upnp:rootdevice")
	USN string

	// ST is the search target or notification type the peer last reported
	ST string

	// Location is the peer's LOCATION header
	Location string

	// SMID and DeviceType are the vendor headers
	SMID       string
	DeviceType string

	// Addr is the source address of the last datagram
	Addr *net.UDPAddr

	// Method of the last packet (NOTIFY or RESPONSE)
	Method ssdp.Method

	// FirstSeen and LastSeen bound the period the peer was heard from
	FirstSeen time.Time
	LastSeen  time.Time

	// MaxAge is how long after LastSeen the peer stays valid
	MaxAge time.Duration
}

// Key identifies the peer in a PeerTable
func (p *Peer) Key() string {
	if p.USN != "" {
		return p.USN
	}
	if p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

// ExpiresAt returns when the peer becomes stale
func (p *Peer) ExpiresAt() time.Time {
	return p.LastSeen.Add(p.MaxAge)
}

// Expired reports whether the peer is stale at now
func (p *Peer) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt())
}

// String returns a human-readable representation of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("%s (%s) at %s", p.Key(), p.DeviceType, p.Location)
}

// PeerTable collects peers from received packets
type PeerTable struct {
	mu    sync.Mutex
	peers map[string]*Peer
}

// NewPeerTable creates an empty table
func NewPeerTable() *PeerTable {
	return &PeerTable{peers: make(map[string]*Peer)}
}

// Observe folds pkt into the table. M-SEARCH requests and packets with no
// usable key are ignored. It returns the updated peer and whether the peer
// was new.
func (t *PeerTable) Observe(from *net.UDPAddr, pkt *protocol.Packet) (*Peer, bool) {
	if pkt == nil || pkt.Method == ssdp.MethodMSearch {
		return nil, false
	}

	maxAge, ok := pkt.MaxAge()
	if !ok {
		maxAge = DefaultMaxAge
	}

	incoming := Peer{
		USN:        pkt.USN,
		ST:         pkt.ST,
		Location:   pkt.Location,
		SMID:       pkt.SMID,
		DeviceType: pkt.DeviceType,
		Addr:       from,
		Method:     pkt.Method,
		FirstSeen:  pkt.ReceivedAt,
		LastSeen:   pkt.ReceivedAt,
		MaxAge:     maxAge,
	}
	key := incoming.Key()
	if key == "" {
		return nil, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, found := t.peers[key]; found {
		incoming.FirstSeen = existing.FirstSeen
		*existing = incoming
		cp := *existing
		return &cp, false
	}

	stored := incoming
	t.peers[key] = &stored
	return &incoming, true
}

// Expire removes peers that are stale at now and returns them
func (t *PeerTable) Expire(now time.Time) []*Peer {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []*Peer
	for key, p := range t.peers {
		if p.Expired(now) {
			cp := *p
			expired = append(expired, &cp)
			delete(t.peers, key)
		}
	}
	sortPeers(expired)
	return expired
}

// Get returns a copy of the peer stored under key
func (t *PeerTable) Get(key string) (*Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.peers[key]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Peers returns copies of all peers ordered by key
func (t *PeerTable) Peers() []*Peer {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Peer, 0, len(t.peers))
	for _, p := range t.peers {
		cp := *p
		out = append(out, &cp)
	}
	sortPeers(out)
	return out
}

// Clear removes all peers
func (t *PeerTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers = make(map[string]*Peer)
}

// Len returns the number of peers
func (t *PeerTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.peers)
}

func sortPeers(peers []*Peer) {
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Key() < peers[j].Key()
	})
}
