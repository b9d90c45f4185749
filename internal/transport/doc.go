// Package transport implements the SSDP multicast transport.
//
// Two socket roles exist:
//
//   - Receiver: one per session, bound to 0.0.0.0:port with SO_REUSEADDR,
//     joined to 239.255.255.250 on the wildcard interface. Reads never
//     block: Receive returns ErrWouldBlock when nothing is queued and the
//     caller decides when to try again.
//   - Sender: stateless. Every SendTo opens a socket bound to the
//     interface's own address, disables multicast loopback, writes one
//     datagram to the group and closes the socket. Nothing is pooled, so
//     each send leaves from the intended interface even on multi-homed
//     hosts.
//
// # Error Handling
//
// Failures are returned as *ssdp.Error. Invalid requests (an interface
// without a name, an empty payload, a port outside 1..65535) are
// KindConstruction and are rejected before any socket is opened. OS
// failures are KindTransport with Op set to the failing step and Code set
// to the errno.
//
// SendAll never stops early: a failure on one interface is recorded in its
// SendResult and the remaining interfaces are still attempted.
package transport
