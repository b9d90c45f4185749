package tui

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/ssdp/internal/discovery"
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/ssdp"
	"github.com/muurk/ssdp/internal/transport"
)

type fakeSession struct {
	searches  []string
	announces int
	drain     func() (int, error)
}

func (f *fakeSession) Search(target string) ([]transport.SendResult, error) {
	f.searches = append(f.searches, target)
	return []transport.SendResult{{Interface: ssdp.Interface{Name: "eth0"}}}, nil
}

func (f *fakeSession) Announce() ([]transport.SendResult, error) {
	f.announces++
	return nil, errors.New("no interfaces")
}

func (f *fakeSession) Drain() (int, error) {
	if f.drain == nil {
		return 0, nil
	}
	return f.drain()
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMonitor_PollFillsTable(t *testing.T) {
	peers := discovery.NewPeerTable()
	consume := Consumer(peers)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sess := &fakeSession{drain: func() (int, error) {
		pkt, _ := protocol.NewParser(nil, protocol.WithClock(func() time.Time { return now })).
			Parse([]byte("NOTIFY * HTTP/1.1\r\nCACHE-CONTROL:max-age=60\r\nUSN:uuid:1\r\nLOCATION:http://a/\r\n\r\n"))
		consume(transport.Datagram{From: &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1900}}, pkt)
		return 1, nil
	}}

	m := NewMonitorModel(MonitorOptions{Session: sess, Peers: peers, Target: "ssdp:all"})
	m.now = func() time.Time { return now }

	updated, cmd := m.Update(pollMsg(now))
	if cmd == nil {
		t.Error("poll did not schedule the next tick")
	}
	mm := updated.(MonitorModel)

	if mm.Received != 1 {
		t.Errorf("Received = %d", mm.Received)
	}
	rows := mm.Table.Rows()
	if len(rows) != 1 || rows[0][0] != "uuid:1" || rows[0][3] != "1m0s" {
		t.Errorf("rows = %v", rows)
	}
	if !strings.Contains(mm.View(), "uuid:1") {
		t.Error("view missing peer")
	}
}

func TestMonitor_ExpiresPeers(t *testing.T) {
	peers := discovery.NewPeerTable()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pkt, _ := protocol.NewParser(nil, protocol.WithClock(func() time.Time { return start })).
		Parse([]byte("NOTIFY * HTTP/1.1\r\nCACHE-CONTROL:max-age=5\r\nUSN:uuid:1\r\n\r\n"))
	peers.Observe(nil, pkt)

	m := NewMonitorModel(MonitorOptions{Session: &fakeSession{}, Peers: peers})
	m.now = func() time.Time { return start.Add(time.Minute) }

	updated, _ := m.Update(pollMsg(start))
	if n := len(updated.(MonitorModel).Table.Rows()); n != 0 {
		t.Errorf("expired peer still shown, rows = %d", n)
	}
}

func TestMonitor_Keys(t *testing.T) {
	sess := &fakeSession{}
	m := NewMonitorModel(MonitorOptions{Session: sess, Target: "urn:x"})

	updated, _ := m.Update(keyPress("s"))
	mm := updated.(MonitorModel)
	if len(sess.searches) != 1 || sess.searches[0] != "urn:x" {
		t.Errorf("searches = %v", sess.searches)
	}
	if mm.Status != "M-SEARCH sent on 1/1 interfaces" {
		t.Errorf("Status = %q", mm.Status)
	}

	updated, _ = mm.Update(keyPress("a"))
	mm = updated.(MonitorModel)
	if sess.announces != 1 || mm.Err == nil {
		t.Errorf("announce: count=%d err=%v", sess.announces, mm.Err)
	}

	_, cmd := mm.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestMonitor_DrainError(t *testing.T) {
	sess := &fakeSession{drain: func() (int, error) { return 0, errors.New("recv failed") }}
	m := NewMonitorModel(MonitorOptions{Session: sess})

	updated, _ := m.Update(pollMsg(time.Now()))
	if err := updated.(MonitorModel).Err; err == nil || !strings.Contains(err.Error(), "recv failed") {
		t.Errorf("Err = %v", err)
	}
}
