package discovery

import (
	"errors"
	"net"
	"syscall"

	"github.com/muurk/ssdp/internal/ssdp"
	"github.com/muurk/ssdp/internal/transport"
	"go.uber.org/zap"
)

type fakeEnumerator struct {
	ifaces []ssdp.Interface
	err    error
	calls  int
}

func (f *fakeEnumerator) Refresh() ([]ssdp.Interface, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ssdp.Interface, len(f.ifaces))
	copy(out, f.ifaces)
	return out, nil
}

type sent struct {
	iface   ssdp.Interface
	port    int
	payload string
}

// fakeSender records sends and fails the bind for interfaces listed in fail.
// A failed send is counted in attempts but never reaches sent.
type fakeSender struct {
	sent     []sent
	attempts []string
	fail     map[string]bool
}

func (f *fakeSender) SendTo(iface ssdp.Interface, port int, payload []byte) error {
	f.attempts = append(f.attempts, iface.Name)
	if f.fail[iface.Name] {
		return ssdp.NewTransportError("bind", iface.Name, syscall.EADDRNOTAVAIL)
	}
	f.sent = append(f.sent, sent{iface: iface, port: port, payload: string(payload)})
	return nil
}

type fakeReceiver struct {
	queue  []transport.Datagram
	err    error
	closed bool
}

func (f *fakeReceiver) Receive() (transport.Datagram, error) {
	if f.err != nil {
		return transport.Datagram{}, f.err
	}
	if len(f.queue) == 0 {
		return transport.Datagram{}, transport.ErrWouldBlock
	}
	dg := f.queue[0]
	f.queue = f.queue[1:]
	return dg, nil
}

func (f *fakeReceiver) Close() error {
	f.closed = true
	return nil
}

func (f *fakeReceiver) push(data string, from string) {
	addr, _ := net.ResolveUDPAddr("udp4", from)
	f.queue = append(f.queue, transport.Datagram{Data: []byte(data), From: addr})
}

func openerFor(r *fakeReceiver, opened *int) ReceiverOpener {
	return func(port int, logger *zap.Logger) (Receiver, error) {
		if opened != nil {
			*opened++
		}
		return r, nil
	}
}

func failingOpener(err error) ReceiverOpener {
	return func(port int, logger *zap.Logger) (Receiver, error) {
		return nil, err
	}
}

var errEnumerate = errors.New("ioctl SIOCGIFCONF failed")

var threeInterfaces = []ssdp.Interface{
	{Name: "eth0", Addr: ssdp.IPv4{192, 168, 1, 10}},
	{Name: "eth1", Addr: ssdp.IPv4{10, 0, 0, 5}},
	{Name: "wlan0", Addr: ssdp.IPv4{172, 16, 0, 2}},
}
