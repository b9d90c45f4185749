package ssdp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Protocol constants
const (
	MulticastAddr   = "239.255.255.250"
	DefaultPort     = 1900
	MaxDatagramSize = 2048

	// DefaultMaxInterfaces matches LSSDP_INTERFACE_LIST_SIZE.
	DefaultMaxInterfaces = 16
)

// MulticastGroup is MulticastAddr as a structured value.
var MulticastGroup = IPv4{239, 255, 255, 250}

// IPv4 is a single IPv4 address.
type IPv4 [4]byte

// ParseIPv4 parses a dotted-decimal IPv4 address.
func ParseIPv4(s string) (IPv4, error) {
	var ip IPv4
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return ip, fmt.Errorf("invalid IPv4 address %q: want 4 octets, got %d", s, len(parts))
	}
	for i, p := range parts {
		if p == "" || len(p) > 3 {
			return IPv4{}, fmt.Errorf("invalid IPv4 address %q: bad octet %q", s, p)
		}
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return IPv4{}, fmt.Errorf("invalid IPv4 address %q: bad octet %q", s, p)
		}
		ip[i] = byte(n)
	}
	return ip, nil
}

// MustParseIPv4 is like ParseIPv4 but panics on error. Intended for tests
// and package-level constants.
func MustParseIPv4(s string) IPv4 {
	ip, err := ParseIPv4(s)
	if err != nil {
		panic(err)
	}
	return ip
}

// IPv4FromNetIP converts a net.IP. ok is false if ip has no IPv4 form.
func IPv4FromNetIP(ip net.IP) (IPv4, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return IPv4{}, false
	}
	return IPv4{v4[0], v4[1], v4[2], v4[3]}, true
}

// String returns the dotted-decimal form, e.g. "192.168.1.10".
func (ip IPv4) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// NetIP returns the address as a net.IP.
func (ip IPv4) NetIP() net.IP {
	return net.IPv4(ip[0], ip[1], ip[2], ip[3])
}

// IsZero reports whether ip is 0.0.0.0.
func (ip IPv4) IsZero() bool {
	return ip == IPv4{}
}

// MarshalText implements encoding.TextMarshaler
func (ip IPv4) MarshalText() ([]byte, error) {
	return []byte(ip.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (ip *IPv4) UnmarshalText(text []byte) error {
	parsed, err := ParseIPv4(string(text))
	if err != nil {
		return err
	}
	*ip = parsed
	return nil
}

// Interface is a local network interface carrying an IPv4 address.
type Interface struct {
	// Name is the short OS identifier, e.g. "eth0"
	Name string

	// Addr is the interface's IPv4 address
	Addr IPv4
}

// String returns "name (addr)".
func (i Interface) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Addr)
}

// HeaderConfig is the caller-supplied content of outgoing messages.
// It is read-only input to the message builders.
type HeaderConfig struct {
	SearchTarget      string `yaml:"search_target"`                 // ST
	USN               string `yaml:"usn"`                           // Unique Service Name
	LocationHost      string `yaml:"location_host,omitempty"`       // Overrides the interface address in LOCATION
	LocationPort      int    `yaml:"location_port,omitempty"`       // Appended as ":port" when 1..65535
	LocationURISuffix string `yaml:"location_uri_suffix,omitempty"` // Appended as "/suffix" when non-empty
	SMID              string `yaml:"sm_id,omitempty"`               // SM_ID
	DeviceType        string `yaml:"device_type,omitempty"`         // DEV_TYPE
}

// Method identifies the kind of SSDP message.
type Method int

const (
	MethodUnknown Method = iota
	MethodMSearch
	MethodNotify
	MethodResponse
)

// String returns the method name used in logs ("M-SEARCH", "NOTIFY", "RESPONSE").
func (m Method) String() string {
	switch m {
	case MethodMSearch:
		return "M-SEARCH"
	case MethodNotify:
		return "NOTIFY"
	case MethodResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}
