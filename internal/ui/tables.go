package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muurk/ssdp/internal/discovery"
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/ssdp"
	"github.com/muurk/ssdp/internal/transport"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderInterfaces renders the interface list
func RenderInterfaces(ifaces []ssdp.Interface) string {
	t := newTable("#", "INTERFACE", "ADDRESS")
	for i, iface := range ifaces {
		t.Row(fmt.Sprint(i+1), iface.Name, iface.Addr.String())
	}
	return t.Render()
}

// RenderSendResults renders one row per interface with its send outcome
func RenderSendResults(results []transport.SendResult) string {
	t := newTable("INTERFACE", "ADDRESS", "STATUS")
	for _, r := range results {
		status := lipgloss.NewStyle().Foreground(SuccessColor).Render(SuccessMarker + " sent")
		if !r.OK() {
			status = lipgloss.NewStyle().Foreground(ErrorColor).Render(FailureMarker + " " + r.Err.Error())
		}
		t.Row(r.Interface.Name, r.Interface.Addr.String(), status)
	}
	return t.Render()
}

// RenderPeers renders the peer table
func RenderPeers(peers []*discovery.Peer, now time.Time) string {
	t := newTable("USN", "LOCATION", "DEVICE", "FROM", "EXPIRES")
	for _, p := range peers {
		from := ""
		if p.Addr != nil {
			from = p.Addr.IP.String()
		}
		t.Row(p.Key(), p.Location, p.DeviceType, from, p.ExpiresAt().Sub(now).Truncate(time.Second).String())
	}
	return t.Render()
}

// RenderPacket renders one received datagram on a single line, followed by
// its extra headers when verbose is set
func RenderPacket(dg transport.Datagram, pkt *protocol.Packet, verbose bool) string {
	var b strings.Builder

	ts := dg.ReceivedAt.Format("15:04:05.000")
	from := "?"
	if dg.From != nil {
		from = dg.From.String()
	}

	if pkt == nil {
		fmt.Fprintf(&b, "%s  %-21s  %s  %d bytes",
			ts, from, lipgloss.NewStyle().Foreground(WarningColor).Render("UNKNOWN"), len(dg.Data))
		return b.String()
	}

	fmt.Fprintf(&b, "%s  %-21s  %s", ts, from, MethodStyle.Render(pkt.Method.String()))
	for _, f := range []struct{ k, v string }{
		{"ST", pkt.ST},
		{"USN", pkt.USN},
		{"LOCATION", pkt.Location},
	} {
		if f.v != "" {
			fmt.Fprintf(&b, "  %s %s", HeaderParamKeyStyle.UnsetPaddingLeft().Render(f.k+"="), f.v)
		}
	}

	if verbose {
		for _, h := range pkt.Headers {
			fmt.Fprintf(&b, "\n    %s %s", ResultKeyStyle.Render(h.Name+":"), h.Value)
		}
	}
	return b.String()
}

// PrintInterfaces prints the interface table
func (p *Printer) PrintInterfaces(ifaces []ssdp.Interface) {
	p.Println(RenderInterfaces(ifaces))
}

// PrintSendResults prints the send table and a one-line summary
func (p *Printer) PrintSendResults(kind string, results []transport.SendResult) {
	p.Println(RenderSendResults(results))
	failed := transport.Failed(results)
	summary := fmt.Sprintf("%s sent on %d of %d interfaces", kind, len(results)-failed, len(results))
	if failed > 0 {
		p.Println(ErrorMessageStyle.Render(summary))
		return
	}
	p.Println(SuccessTitleStyle.Render(summary))
}

// PrintPacket prints one received datagram
func (p *Printer) PrintPacket(dg transport.Datagram, pkt *protocol.Packet, verbose bool) {
	p.Println(RenderPacket(dg, pkt, verbose))
}

// PrintPeers prints the peer table
func (p *Printer) PrintPeers(peers []*discovery.Peer, now time.Time) {
	p.Println(RenderPeers(peers, now))
}
