package netif

import (
	"net"

	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/ssdp"
	"go.uber.org/zap"
)

// Entry is one row of the OS interface table: an interface name and one of
// its addresses. An interface with several addresses yields several entries.
type Entry struct {
	Name string
	Addr net.Addr
}

// Source reads the OS interface table in scan order.
type Source func() ([]Entry, error)

// Enumerator lists local IPv4 interfaces
type Enumerator struct {
	max    int
	source Source
	logger *zap.Logger
}

// NewEnumerator creates an enumerator reading the system interface table.
// max <= 0 selects ssdp.DefaultMaxInterfaces.
func NewEnumerator(max int, logger *zap.Logger) *Enumerator {
	return NewEnumeratorWithSource(max, SystemSource, logger)
}

// NewEnumeratorWithSource creates an enumerator reading from src.
func NewEnumeratorWithSource(max int, src Source, logger *zap.Logger) *Enumerator {
	if max <= 0 {
		max = ssdp.DefaultMaxInterfaces
	}
	return &Enumerator{
		max:    max,
		source: src,
		logger: logging.OrNop(logger).Named("netif"),
	}
}

// Max returns the configured interface limit
func (e *Enumerator) Max() int {
	return e.max
}

// Refresh returns at most Max() IPv4 interfaces in scan order.
// Any failure reading the table aborts the refresh; no partial list is returned.
func (e *Enumerator) Refresh() ([]ssdp.Interface, error) {
	entries, err := e.source()
	if err != nil {
		e.logger.Error("Failed to read interface table", zap.Error(err))
		return nil, ssdp.NewTransportError("interfaces", "", err)
	}

	ifaces := make([]ssdp.Interface, 0, e.max)
	seen := 0
	for _, entry := range entries {
		addr, ok := ipv4Of(entry.Addr)
		if !ok {
			continue
		}

		if seen >= e.max {
			if seen == e.max {
				e.logger.Warn("Number of network interfaces exceeds maximum, truncating",
					zap.Int("max", e.max),
				)
			}
			e.logger.Debug("Dropped interface",
				zap.Int("index", seen),
				zap.String("name", entry.Name),
				zap.Stringer("addr", addr),
			)
			seen++
			continue
		}

		ifaces = append(ifaces, ssdp.Interface{Name: entry.Name, Addr: addr})
		e.logger.Debug("Interface",
			zap.Int("index", seen),
			zap.String("name", entry.Name),
			zap.Stringer("addr", addr),
		)
		seen++
	}

	return ifaces, nil
}

// ipv4Of extracts the IPv4 address from an interface address
func ipv4Of(a net.Addr) (ssdp.IPv4, bool) {
	switch v := a.(type) {
	case *net.IPNet:
		return ssdp.IPv4FromNetIP(v.IP)
	case *net.IPAddr:
		return ssdp.IPv4FromNetIP(v.IP)
	default:
		return ssdp.IPv4{}, false
	}
}

// SystemSource reads the interface table through the net package. Only
// interfaces that are up contribute entries.
func SystemSource() ([]Entry, error) {
	ifis, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, ifi := range ifis {
		if ifi.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			return nil, err
		}
		for _, a := range addrs {
			entries = append(entries, Entry{Name: ifi.Name, Addr: a})
		}
	}
	return entries, nil
}
