// Package protocol builds and parses SSDP text messages.
//
// SSDP messages are HTTP-shaped datagrams sent over UDP multicast: a request
// line followed by "NAME:value" header lines, each terminated by CRLF, and an
// empty line ending the header block.
//
// # Message Types
//
// Three request lines are recognised, byte-exact including the CRLF:
//   - "M-SEARCH * HTTP/1.1": a search for devices matching a search target
//   - "NOTIFY * HTTP/1.1": an unsolicited alive announcement
//   - "HTTP/1.1 200 OK": a unicast reply to a search (parsed only, never built)
//
// # Construction
//
// BuildMSearch and BuildNotify render the fixed templates with no optional
// whitespace after the colon. Both reject output over MaxMessageSize and
// NOTIFY rejects a LOCATION value over MaxLocationSize. Nothing is truncated.
//
//	msg, err := protocol.BuildMSearch("ssdp:all", ssdp.DefaultPort)
//	if err != nil {
//	    return err
//	}
//
// # Parsing
//
// Parser.Parse is best effort. An unrecognised request line produces no
// packet. Within a recognised message every header line is handled on its
// own: a line that cannot be split into a name and a non-empty value is
// reported as a Diagnostic and skipped, and the remaining lines are still
// applied.
//
//	p := protocol.NewParser(logger)
//	pkt, diags := p.Parse(datagram)
//	if pkt == nil {
//	    // not SSDP
//	}
//
// Recognised header names (ST, USN, LOCATION, SM_ID, DEV_TYPE) are matched
// case-insensitively and stored in the Packet's named fields. Every other
// header goes to Packet.Headers under its upper-cased name, where a repeated
// name overwrites the earlier value in place.
//
// # Thread Safety
//
// The builders are pure functions. A Parser holds no per-message state and is
// safe for concurrent use.
package protocol
