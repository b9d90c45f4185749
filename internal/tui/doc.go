// Package tui provides the interactive ssdpctl monitor.
//
// The monitor is a Bubble Tea program that lists SSDP peers in a table as
// they announce themselves or answer a search. It owns the readiness loop: a
// tick message every poll interval drains the session's receiver, folds the
// packets into a discovery.PeerTable and drops peers whose max-age has
// passed.
//
// # Key Bindings
//
//   - s: send an M-SEARCH for the configured target
//   - a: send an ssdp:alive NOTIFY on every interface
//   - c: clear the peer table
//   - q: quit
package tui
