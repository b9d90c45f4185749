package discovery

import (
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/ssdp"
	"github.com/muurk/ssdp/internal/transport"
)

// Handler routes received datagrams by method. Nil callbacks are skipped.
type Handler struct {
	OnSearch   func(transport.Datagram, *protocol.Packet)
	OnNotify   func(transport.Datagram, *protocol.Packet)
	OnResponse func(transport.Datagram, *protocol.Packet)

	// OnUnknown receives datagrams that did not parse as SSDP
	OnUnknown func(transport.Datagram)
}

// Consume dispatches one datagram. It has the Consumer signature.
func (h *Handler) Consume(dg transport.Datagram, pkt *protocol.Packet) {
	if pkt == nil {
		if h.OnUnknown != nil {
			h.OnUnknown(dg)
		}
		return
	}

	var fn func(transport.Datagram, *protocol.Packet)
	switch pkt.Method {
	case ssdp.MethodMSearch:
		fn = h.OnSearch
	case ssdp.MethodNotify:
		fn = h.OnNotify
	case ssdp.MethodResponse:
		fn = h.OnResponse
	}
	if fn != nil {
		fn(dg, pkt)
	}
}

// Chain calls each consumer in order
func Chain(consumers ...Consumer) Consumer {
	return func(dg transport.Datagram, pkt *protocol.Packet) {
		for _, c := range consumers {
			if c != nil {
				c(dg, pkt)
			}
		}
	}
}
