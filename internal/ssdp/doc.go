// Package ssdp holds the model shared by the SSDP discovery core.
//
// The core is split into small packages that each own one concern:
//
//   - netif: enumerates local IPv4 interfaces
//   - transport: multicast receiver and per-interface senders
//   - protocol: M-SEARCH/NOTIFY construction and datagram parsing
//   - discovery: the session tying the above together
//
// This package only defines the values passed between them: the IPv4
// address type, the Interface record, the caller's HeaderConfig, the
// request Method and the typed Error used for transport and
// construction failures.
//
// # Wire Constants
//
// All traffic uses the fixed group 239.255.255.250. The port is chosen by
// the caller; 1900 is the SSDP convention and the default everywhere in
// this module. Datagrams are read into a 2048 byte buffer.
//
// # Thread Safety
//
// Values in this package are plain data and safe to copy. None of the
// core packages lock internally; a session is owned by one caller.
package ssdp
