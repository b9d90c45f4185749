package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/muurk/ssdp/internal/ssdp"
)

var testHeaderConfig = ssdp.HeaderConfig{
	SearchTarget:      "urn:test:service:demo:1",
	USN:               "uuid:1234",
	LocationPort:      8080,
	LocationURISuffix: "desc.xml",
	SMID:              "SM-01",
	DeviceType:        "gateway",
}

var testInterface = ssdp.Interface{Name: "eth0", Addr: ssdp.IPv4{192, 168, 1, 10}}

func TestBuildMSearch(t *testing.T) {
	got, err := BuildMSearch("ssdp:all", 1900)
	if err != nil {
		t.Fatalf("BuildMSearch() error = %v", err)
	}

	want := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST:239.255.255.250:1900\r\n" +
		"MAN:\"ssdp:discover\"\r\n" +
		"ST:ssdp:all\r\n" +
		"MX:1\r\n" +
		"\r\n"
	if string(got) != want {
		t.Errorf("BuildMSearch() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildMSearch_Deterministic(t *testing.T) {
	a, _ := BuildMSearch("urn:x", 1900)
	b, _ := BuildMSearch("urn:x", 1900)
	if string(a) != string(b) {
		t.Error("BuildMSearch is not deterministic")
	}
}

func TestBuildMSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		port    int
		wantErr error
	}{
		{name: "negative port", target: "ssdp:all", port: -1},
		{name: "port too large", target: "ssdp:all", port: 65536},
		{name: "oversized target", target: strings.Repeat("x", MaxMessageSize), port: 1900, wantErr: ErrMessageTooLarge},
		{name: "target with CRLF", target: "ssdp:all\r\nMX:5", port: 1900, wantErr: ErrInvalidHeaderValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := BuildMSearch(tt.target, tt.port)
			if err == nil {
				t.Fatalf("expected error, got %d bytes", len(msg))
			}
			if msg != nil {
				t.Error("expected nil message on error")
			}
			if !ssdp.IsKind(err, ssdp.KindConstruction) {
				t.Errorf("error kind: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildNotify(t *testing.T) {
	got, err := BuildNotify(testHeaderConfig, testInterface, 1900)
	if err != nil {
		t.Fatalf("BuildNotify() error = %v", err)
	}

	want := "NOTIFY * HTTP/1.1\r\n" +
		"HOST:239.255.255.250:1900\r\n" +
		"CACHE-CONTROL:max-age=120\r\n" +
		"ST:urn:test:service:demo:1\r\n" +
		"USN:uuid:1234\r\n" +
		"LOCATION:192.168.1.10:8080/desc.xml\r\n" +
		"SM_ID:SM-01\r\n" +
		"DEV_TYPE:gateway\r\n" +
		"OPT:\"http://schemas.upnp.org/upnp/1/0/\"; ns=01\r\n" +
		"01-NLS:1\r\n" +
		"BOOTID.UPNP.ORG:1\r\n" +
		"CONFIGID.UPNP.ORG:1337\r\n" +
		"NTS:ssdp:alive\r\n" +
		"\r\n"
	if string(got) != want {
		t.Errorf("BuildNotify() =\n%q\nwant\n%q", got, want)
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		port   int
		suffix string
		want   string
	}{
		{name: "interface address only", want: "192.168.1.10"},
		{name: "with port", port: 80, want: "192.168.1.10:80"},
		{name: "with suffix", suffix: "x", want: "192.168.1.10/x"},
		{name: "port and suffix", port: 65535, suffix: "a/b", want: "192.168.1.10:65535/a/b"},
		{name: "host override", host: "example.local", port: 8080, want: "example.local:8080"},
		{name: "port zero omitted", port: 0, suffix: "d", want: "192.168.1.10/d"},
		{name: "port out of range omitted", port: 70000, want: "192.168.1.10"},
		{name: "negative port omitted", port: -5, want: "192.168.1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ssdp.HeaderConfig{LocationHost: tt.host, LocationPort: tt.port, LocationURISuffix: tt.suffix}
			if got := Location(cfg, testInterface); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildNotify_LocationUsesInterface(t *testing.T) {
	cfg := testHeaderConfig
	cfg.LocationPort = 0
	cfg.LocationURISuffix = ""

	a, err := BuildNotify(cfg, testInterface, 1900)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildNotify(cfg, ssdp.Interface{Name: "wlan0", Addr: ssdp.IPv4{10, 0, 0, 7}}, 1900)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(a), "\r\nLOCATION:192.168.1.10\r\n") {
		t.Errorf("eth0 message missing LOCATION:\n%s", a)
	}
	if !strings.Contains(string(b), "\r\nLOCATION:10.0.0.7\r\n") {
		t.Errorf("wlan0 message missing LOCATION:\n%s", b)
	}
}

func TestBuildNotify_Errors(t *testing.T) {
	longLocation := testHeaderConfig
	longLocation.LocationHost = strings.Repeat("h", MaxLocationSize+1)

	exactLocation := testHeaderConfig
	exactLocation.LocationHost = strings.Repeat("h", MaxLocationSize-len(":8080/desc.xml"))

	longUSN := testHeaderConfig
	longUSN.USN = strings.Repeat("u", 800)

	injectedUSN := testHeaderConfig
	injectedUSN.USN = "uuid:1\r\nNTS:ssdp:byebye"

	bareLF := testHeaderConfig
	bareLF.DeviceType = "gw\n"

	crInSuffix := testHeaderConfig
	crInSuffix.LocationURISuffix = "desc.xml\r"

	tests := []struct {
		name    string
		cfg     ssdp.HeaderConfig
		port    int
		wantErr error
	}{
		{name: "location over limit", cfg: longLocation, port: 1900, wantErr: ErrLocationTooLarge},
		{name: "message over limit", cfg: longUSN, port: 1900, wantErr: ErrMessageTooLarge},
		{name: "invalid host port", cfg: testHeaderConfig, port: 99999},
		{name: "header injection in USN", cfg: injectedUSN, port: 1900, wantErr: ErrInvalidHeaderValue},
		{name: "LF in DEV_TYPE", cfg: bareLF, port: 1900, wantErr: ErrInvalidHeaderValue},
		{name: "CR in LOCATION", cfg: crInSuffix, port: 1900, wantErr: ErrInvalidHeaderValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildNotify(tt.cfg, testInterface, tt.port)
			if err == nil {
				t.Fatal("expected error")
			}
			if !ssdp.IsKind(err, ssdp.KindConstruction) {
				t.Errorf("error kind: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("location at limit", func(t *testing.T) {
		if _, err := BuildNotify(exactLocation, testInterface, 1900); err != nil {
			t.Errorf("BuildNotify() error = %v", err)
		}
	})

	t.Run("error names interface", func(t *testing.T) {
		_, err := BuildNotify(longUSN, testInterface, 1900)
		var e *ssdp.Error
		if !errors.As(err, &e) || e.Interface != "eth0" {
			t.Errorf("error = %v, want interface eth0", err)
		}
	})
}

func TestBuildNotify_RoundTrip(t *testing.T) {
	msg, err := BuildNotify(testHeaderConfig, testInterface, 1900)
	if err != nil {
		t.Fatal(err)
	}

	pkt, diags := NewParser(nil).Parse(msg)
	if pkt == nil {
		t.Fatalf("Parse() returned nil packet, diags = %v", diags)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if pkt.Method != ssdp.MethodNotify {
		t.Errorf("Method = %v, want NOTIFY", pkt.Method)
	}

	checks := map[string]string{
		"ST":       testHeaderConfig.SearchTarget,
		"USN":      testHeaderConfig.USN,
		"Location": "192.168.1.10:8080/desc.xml",
		"SMID":     testHeaderConfig.SMID,
		"DevType":  testHeaderConfig.DeviceType,
	}
	got := map[string]string{
		"ST":       pkt.ST,
		"USN":      pkt.USN,
		"Location": pkt.Location,
		"SMID":     pkt.SMID,
		"DevType":  pkt.DeviceType,
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %q, want %q", k, got[k], want)
		}
	}
	if age, ok := pkt.MaxAge(); !ok || age.Seconds() != NotifyMaxAge {
		t.Errorf("MaxAge() = %v, %v", age, ok)
	}
	if pkt.Header("NTS") != "ssdp:alive" {
		t.Errorf("NTS = %q", pkt.Header("NTS"))
	}
}

func TestBuildNotify_RoundTripKeepsWhitespace(t *testing.T) {
	cfg := testHeaderConfig
	cfg.SearchTarget = "urn:x "
	cfg.USN = " uuid:1"
	cfg.SMID = "\t"
	cfg.DeviceType = " gw\t"

	msg, err := BuildNotify(cfg, testInterface, 1900)
	if err != nil {
		t.Fatal(err)
	}

	pkt, diags := NewParser(nil).Parse(msg)
	if pkt == nil || len(diags) != 0 {
		t.Fatalf("Parse() = %v, %v", pkt, diags)
	}
	got := []string{pkt.ST, pkt.USN, pkt.SMID, pkt.DeviceType}
	want := []string{cfg.SearchTarget, cfg.USN, cfg.SMID, cfg.DeviceType}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildMSearch_RoundTrip(t *testing.T) {
	msg, err := BuildMSearch("urn:x", 1900)
	if err != nil {
		t.Fatal(err)
	}
	pkt, diags := NewParser(nil).Parse(msg)
	if pkt == nil || pkt.Method != ssdp.MethodMSearch {
		t.Fatalf("Parse() = %v, %v", pkt, diags)
	}
	if pkt.ST != "urn:x" {
		t.Errorf("ST = %q", pkt.ST)
	}
	if pkt.Header("man") != `"ssdp:discover"` {
		t.Errorf("MAN = %q", pkt.Header("man"))
	}
}
