// Package discovery drives SSDP announce and search over every local IPv4
// interface and hands received datagrams to a consumer.
//
// # Session
//
// A Session ties the other packages together:
//  1. Refresh the interface list (netif)
//  2. Render NOTIFY or M-SEARCH text (protocol)
//  3. Send once per interface from a socket bound to that interface (transport)
//  4. Read the shared multicast receiver without blocking and parse what arrives
//
// Announce and Search return one transport.SendResult per interface so that a
// caller can act on partial success. A failure on one interface never stops
// the remaining interfaces from being tried.
//
// # Usage Example
//
//	s := discovery.NewSession(discovery.Options{
//	    Port:   ssdp.DefaultPort,
//	    Header: header,
//	    Consumer: func(dg transport.Datagram, pkt *protocol.Packet) {
//	        if pkt != nil {
//	            fmt.Println(dg.From, pkt)
//	        }
//	    },
//	    Logger: logger,
//	})
//	if err := s.Open(); err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	results, err := s.Search("ssdp:all")
//
//	// The caller owns the readiness loop
//	for range ticker.C {
//	    for {
//	        ok, err := s.Pump()
//	        if err != nil || !ok {
//	            break
//	        }
//	    }
//	}
//
// # Peers
//
// PeerTable folds NOTIFY and RESPONSE packets into Peer records keyed by USN
// and expires them once their CACHE-CONTROL max-age has passed. Scanner
// combines a Session and a PeerTable into a timed search.
//
// # Thread Safety
//
// A Session performs no locking and starts no goroutines. It must be owned by
// one goroutine, or guarded by the caller. PeerTable is safe for concurrent
// use.
package discovery
