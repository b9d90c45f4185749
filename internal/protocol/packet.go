package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/ssdp/internal/ssdp"
)

// Known header names, upper-case
const (
	HeaderST         = "ST"
	HeaderUSN        = "USN"
	HeaderLocation   = "LOCATION"
	HeaderSMID       = "SM_ID"
	HeaderDeviceType = "DEV_TYPE"
)

// Header is one header line that is not one of the known fields
type Header struct {
	Name  string // Upper-cased
	Value string
}

// Packet is a parsed SSDP message. Empty known fields were not present.
type Packet struct {
	Method     ssdp.Method
	ST         string
	USN        string
	Location   string
	SMID       string
	DeviceType string
	Headers    []Header  // Other headers in first-seen order
	ReceivedAt time.Time // Set when parsing started
}

// Header returns the value for name, looked up case-insensitively across the
// known fields and Headers. It returns "" when the header was not present.
func (p *Packet) Header(name string) string {
	name = strings.ToUpper(name)
	switch name {
	case HeaderST:
		return p.ST
	case HeaderUSN:
		return p.USN
	case HeaderLocation:
		return p.Location
	case HeaderSMID:
		return p.SMID
	case HeaderDeviceType:
		return p.DeviceType
	}
	for _, h := range p.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// MaxAge returns the max-age directive of CACHE-CONTROL, if present and valid
func (p *Packet) MaxAge() (time.Duration, bool) {
	cc := p.Header("CACHE-CONTROL")
	if cc == "" {
		return 0, false
	}
	for _, directive := range strings.Split(cc, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "max-age") {
			continue
		}
		secs, err := strconv.Atoi(strings.Trim(strings.TrimSpace(v), `"`))
		if err != nil || secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// setHeader stores an unknown header, replacing the value of an earlier
// header with the same name
func (p *Packet) setHeader(name, value string) {
	for i := range p.Headers {
		if p.Headers[i].Name == name {
			p.Headers[i].Value = value
			return
		}
	}
	p.Headers = append(p.Headers, Header{Name: name, Value: value})
}

func (p *Packet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s{", p.Method)
	fields := []struct{ name, value string }{
		{"st", p.ST},
		{"usn", p.USN},
		{"location", p.Location},
		{"sm_id", p.SMID},
		{"dev_type", p.DeviceType},
	}
	sep := ""
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s%s=%q", sep, f.name, f.value)
		sep = ", "
	}
	if len(p.Headers) > 0 {
		fmt.Fprintf(&b, "%sextra=%d", sep, len(p.Headers))
	}
	b.WriteString("}")
	return b.String()
}
