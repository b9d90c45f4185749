package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/ssdp/internal/ssdp"
)

const (
	// MaxMessageSize is the largest message either builder will produce
	MaxMessageSize = 1024

	// MaxLocationSize is the largest LOCATION value BuildNotify will embed
	MaxLocationSize = 256

	// NotifyMaxAge is the CACHE-CONTROL max-age announced in NOTIFY messages
	NotifyMaxAge = 120
)

// Request lines, including the terminating CRLF
const (
	MSearchLine  = "M-SEARCH * HTTP/1.1\r\n"
	NotifyLine   = "NOTIFY * HTTP/1.1\r\n"
	ResponseLine = "HTTP/1.1 200 OK\r\n"
)

// UDA v1.1 headers carried by every NOTIFY
const udaHeaders = "OPT:\"http://schemas.upnp.org/upnp/1/0/\"; ns=01\r\n" +
	"01-NLS:1\r\n" +
	"BOOTID.UPNP.ORG:1\r\n" +
	"CONFIGID.UPNP.ORG:1337\r\n"

var (
	// ErrMessageTooLarge is returned when a rendered message exceeds MaxMessageSize
	ErrMessageTooLarge = errors.New("message too large")

	// ErrLocationTooLarge is returned when LOCATION exceeds MaxLocationSize
	ErrLocationTooLarge = errors.New("location too large")

	// ErrInvalidHeaderValue is returned when a header value contains CR or LF
	ErrInvalidHeaderValue = errors.New("header value contains CR or LF")
)

// BuildMSearch renders an M-SEARCH for searchTarget. port is written into the
// HOST header.
//
// Format:
//
//	M-SEARCH * HTTP/1.1
//	HOST:239.255.255.250:<port>
//	MAN:"ssdp:discover"
//	ST:<searchTarget>
//	MX:1
func BuildMSearch(searchTarget string, port int) ([]byte, error) {
	if err := checkHostPort(port); err != nil {
		return nil, err
	}
	if err := checkValues("M-SEARCH", "", Header{HeaderST, searchTarget}); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(MSearchLine)
	writeHeader(&b, "HOST", hostValue(port))
	writeHeader(&b, "MAN", `"ssdp:discover"`)
	writeHeader(&b, "ST", searchTarget)
	writeHeader(&b, "MX", "1")
	b.WriteString("\r\n")

	return finish("M-SEARCH", "", b.String())
}

// BuildNotify renders an ssdp:alive NOTIFY announcing cfg as reachable via
// iface. port is written into the HOST header.
//
// LOCATION is cfg.LocationHost, or the dotted address of iface when empty,
// followed by ":<LocationPort>" when LocationPort is a valid port and
// "/<LocationURISuffix>" when the suffix is set.
func BuildNotify(cfg ssdp.HeaderConfig, iface ssdp.Interface, port int) ([]byte, error) {
	if err := checkHostPort(port); err != nil {
		return nil, err
	}

	location := Location(cfg, iface)
	if len(location) > MaxLocationSize {
		return nil, ssdp.NewConstructionError("build NOTIFY", iface.Name,
			fmt.Errorf("%w: %d bytes (max %d)", ErrLocationTooLarge, len(location), MaxLocationSize))
	}
	err := checkValues("NOTIFY", iface.Name,
		Header{HeaderST, cfg.SearchTarget},
		Header{HeaderUSN, cfg.USN},
		Header{HeaderLocation, location},
		Header{HeaderSMID, cfg.SMID},
		Header{HeaderDeviceType, cfg.DeviceType},
	)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(NotifyLine)
	writeHeader(&b, "HOST", hostValue(port))
	writeHeader(&b, "CACHE-CONTROL", "max-age="+strconv.Itoa(NotifyMaxAge))
	writeHeader(&b, "ST", cfg.SearchTarget)
	writeHeader(&b, "USN", cfg.USN)
	writeHeader(&b, "LOCATION", location)
	writeHeader(&b, "SM_ID", cfg.SMID)
	writeHeader(&b, "DEV_TYPE", cfg.DeviceType)
	b.WriteString(udaHeaders)
	writeHeader(&b, "NTS", "ssdp:alive")
	b.WriteString("\r\n")

	return finish("NOTIFY", iface.Name, b.String())
}

// Location computes the LOCATION value BuildNotify would announce
func Location(cfg ssdp.HeaderConfig, iface ssdp.Interface) string {
	host := cfg.LocationHost
	if host == "" {
		host = iface.Addr.String()
	}

	var b strings.Builder
	b.WriteString(host)
	if cfg.LocationPort >= 1 && cfg.LocationPort <= 65535 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(cfg.LocationPort))
	}
	if cfg.LocationURISuffix != "" {
		b.WriteByte('/')
		b.WriteString(cfg.LocationURISuffix)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteString("\r\n")
}

// checkValues rejects values that would end their header line early
func checkValues(kind, iface string, headers ...Header) error {
	for _, h := range headers {
		if strings.ContainsAny(h.Value, "\r\n") {
			return ssdp.NewConstructionError("build "+kind, iface,
				fmt.Errorf("%w: %s=%q", ErrInvalidHeaderValue, h.Name, h.Value))
		}
	}
	return nil
}

func hostValue(port int) string {
	return ssdp.MulticastAddr + ":" + strconv.Itoa(port)
}

func checkHostPort(port int) error {
	if port < 0 || port > 65535 {
		return ssdp.NewConstructionError("build", "", fmt.Errorf("invalid port %d", port))
	}
	return nil
}

// finish enforces MaxMessageSize on a rendered message
func finish(kind, iface, msg string) ([]byte, error) {
	if len(msg) > MaxMessageSize {
		return nil, ssdp.NewConstructionError("build "+kind, iface,
			fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, len(msg), MaxMessageSize))
	}
	return []byte(msg), nil
}
