package protocol

import (
	"strings"
	"testing"
	"time"

	"github.com/muurk/ssdp/internal/ssdp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParse_Methods(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		want   ssdp.Method
		wantOK bool
	}{
		{name: "m-search", data: "M-SEARCH * HTTP/1.1\r\nST:a\r\n\r\n", want: ssdp.MethodMSearch, wantOK: true},
		{name: "notify", data: "NOTIFY * HTTP/1.1\r\nST:a\r\n\r\n", want: ssdp.MethodNotify, wantOK: true},
		{name: "response", data: "HTTP/1.1 200 OK\r\nST:a\r\n\r\n", want: ssdp.MethodResponse, wantOK: true},
		{name: "request line only", data: "NOTIFY * HTTP/1.1\r\n", want: ssdp.MethodNotify, wantOK: true},
		{name: "lowercase method", data: "notify * HTTP/1.1\r\nST:a\r\n", wantOK: false},
		{name: "missing CR", data: "NOTIFY * HTTP/1.1\nST:a\n", wantOK: false},
		{name: "other status", data: "HTTP/1.1 404 Not Found\r\n\r\n", wantOK: false},
		{name: "GET", data: "GET / HTTP/1.1\r\nHost: x\r\n\r\n", wantOK: false},
		{name: "truncated request line", data: "M-SEARCH * HTTP/1.1", wantOK: false},
		{name: "empty", data: "", wantOK: false},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt, diags := p.Parse([]byte(tt.data))
			if !tt.wantOK {
				if pkt != nil {
					t.Fatalf("expected nil packet, got %v", pkt)
				}
				if len(diags) != 1 || diags[0].Kind != UnknownMethod || diags[0].Line != 1 {
					t.Errorf("diags = %v, want one UnknownMethod on line 1", diags)
				}
				return
			}
			if pkt == nil {
				t.Fatalf("expected packet, diags = %v", diags)
			}
			if pkt.Method != tt.want {
				t.Errorf("Method = %v, want %v", pkt.Method, tt.want)
			}
		})
	}
}

func TestParse_MalformedLineDoesNotDropPacket(t *testing.T) {
	data := "NOTIFY * HTTP/1.1\r\n" +
		":bad\r\n" +
		"ST:foo\r\n" +
		"\r\n"

	pkt, diags := NewParser(nil).Parse([]byte(data))
	if pkt == nil {
		t.Fatal("expected packet")
	}
	if pkt.ST != "foo" {
		t.Errorf("ST = %q, want foo", pkt.ST)
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	want := Diagnostic{Kind: MalformedLine, Line: 2, Text: ":bad"}
	if diags[0] != want {
		t.Errorf("diag = %+v, want %+v", diags[0], want)
	}
}

func TestParse_LineDiagnostics(t *testing.T) {
	data := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST:239.255.255.250:1900\r\n" + // 2
		"novalue\r\n" + // 3
		":leading\r\n" + // 4
		"ST:\r\n" + // 5
		"USN:   \r\n" + // 6
		"LOCATION:http://h/\r\n" + // 7
		"\r\n"

	pkt, diags := NewParser(nil).Parse([]byte(data))
	if pkt == nil {
		t.Fatal("expected packet")
	}

	want := []Diagnostic{
		{Kind: MalformedLine, Line: 3, Text: "novalue"},
		{Kind: MalformedLine, Line: 4, Text: ":leading"},
		{Kind: EmptyValue, Line: 5, Text: "ST:"},
	}
	if len(diags) != len(want) {
		t.Fatalf("diags = %v, want %v", diags, want)
	}
	for i := range want {
		if diags[i] != want[i] {
			t.Errorf("diags[%d] = %+v, want %+v", i, diags[i], want[i])
		}
	}

	if pkt.ST != "" {
		t.Errorf("empty value stored: ST=%q", pkt.ST)
	}
	if pkt.USN != "   " {
		t.Errorf("USN = %q, want the three spaces after the colon", pkt.USN)
	}
	if pkt.Location != "http://h/" {
		t.Errorf("Location = %q", pkt.Location)
	}
	if pkt.Header("HOST") != "239.255.255.250:1900" {
		t.Errorf("HOST = %q", pkt.Header("HOST"))
	}
}

func TestParse_KnownFieldsCaseInsensitive(t *testing.T) {
	data := "HTTP/1.1 200 OK\r\n" +
		"st:a\r\n" +
		"Usn:b\r\n" +
		"location:c\r\n" +
		"sm_id:d\r\n" +
		"Dev_Type:e\r\n" +
		"\r\n"

	pkt, diags := NewParser(nil).Parse([]byte(data))
	if pkt == nil || len(diags) != 0 {
		t.Fatalf("Parse() = %v, %v", pkt, diags)
	}
	got := []string{pkt.ST, pkt.USN, pkt.Location, pkt.SMID, pkt.DeviceType}
	want := []string{"a", "b", "c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
	if len(pkt.Headers) != 0 {
		t.Errorf("known fields leaked into Headers: %v", pkt.Headers)
	}
}

func TestParse_ValueKeptVerbatim(t *testing.T) {
	data := "NOTIFY * HTTP/1.1\r\n" +
		"ST: \r\n" +
		"USN: uuid:1\r\n" +
		"SM_ID:\t\r\n" +
		"X-Extra:  a b \r\n" +
		"\r\n"

	pkt, diags := NewParser(nil).Parse([]byte(data))
	if pkt == nil || len(diags) != 0 {
		t.Fatalf("Parse() = %v, %v", pkt, diags)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ST", pkt.ST, " "},
		{"USN", pkt.USN, " uuid:1"},
		{"SM_ID", pkt.SMID, "\t"},
		{"X-EXTRA", pkt.Header("X-EXTRA"), "  a b "},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestParse_OverflowHeaders(t *testing.T) {
	data := "NOTIFY * HTTP/1.1\r\n" +
		"X-One:1\r\n" +
		"NTS:ssdp:alive\r\n" +
		"x-one:2\r\n" +
		"Server:test/1.0\r\n" +
		"\r\n"

	pkt, _ := NewParser(nil).Parse([]byte(data))
	if pkt == nil {
		t.Fatal("expected packet")
	}

	want := []Header{
		{Name: "X-ONE", Value: "2"},
		{Name: "NTS", Value: "ssdp:alive"},
		{Name: "SERVER", Value: "test/1.0"},
	}
	if len(pkt.Headers) != len(want) {
		t.Fatalf("Headers = %v, want %v", pkt.Headers, want)
	}
	for i := range want {
		if pkt.Headers[i] != want[i] {
			t.Errorf("Headers[%d] = %+v, want %+v", i, pkt.Headers[i], want[i])
		}
	}
	if pkt.Header("x-one") != "2" {
		t.Errorf("Header(x-one) = %q", pkt.Header("x-one"))
	}
	if pkt.Header("missing") != "" {
		t.Error("Header(missing) should be empty")
	}
}

func TestParse_KnownFieldLastWriteWins(t *testing.T) {
	data := "NOTIFY * HTTP/1.1\r\nST:first\r\nST:second\r\n\r\n"
	pkt, _ := NewParser(nil).Parse([]byte(data))
	if pkt == nil || pkt.ST != "second" {
		t.Errorf("ST = %v", pkt)
	}
}

func TestParse_UnterminatedTailIgnored(t *testing.T) {
	data := "NOTIFY * HTTP/1.1\r\nST:a\r\nUSN:partial"

	pkt, diags := NewParser(nil).Parse([]byte(data))
	if pkt == nil {
		t.Fatal("expected packet")
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if pkt.ST != "a" {
		t.Errorf("ST = %q", pkt.ST)
	}
	if pkt.USN != "" {
		t.Errorf("unterminated USN was parsed: %q", pkt.USN)
	}
}

func TestParse_ReceivedAtStampedOnce(t *testing.T) {
	calls := 0
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewParser(nil, WithClock(func() time.Time {
		calls++
		return stamp
	}))

	pkt, _ := p.Parse([]byte("NOTIFY * HTTP/1.1\r\nST:a\r\nUSN:b\r\nLOCATION:c\r\n\r\n"))
	if pkt == nil {
		t.Fatal("expected packet")
	}
	if !pkt.ReceivedAt.Equal(stamp) {
		t.Errorf("ReceivedAt = %v, want %v", pkt.ReceivedAt, stamp)
	}
	if calls != 1 {
		t.Errorf("clock called %d times, want 1", calls)
	}
}

func TestParse_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewParser(zap.New(core))

	p.Parse([]byte("GET / HTTP/1.1\r\n\r\n"))
	p.Parse([]byte("NOTIFY * HTTP/1.1\r\nbad\r\nST:\r\n\r\n"))

	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 2 {
		t.Errorf("warn entries = %d, want 2", n)
	}
	if n := logs.FilterMessage("Skipping header with empty value").Len(); n != 1 {
		t.Errorf("empty value entries = %d, want 1", n)
	}
	for _, e := range logs.All() {
		if e.LoggerName != "protocol" {
			t.Errorf("logger name = %q, want protocol", e.LoggerName)
		}
	}
}

func TestParse_UnknownMethodTextBounded(t *testing.T) {
	data := strings.Repeat("Z", 500)
	_, diags := NewParser(nil).Parse([]byte(data))
	if len(diags) != 1 || len(diags[0].Text) != maxDiagnosticText {
		t.Errorf("diags = %v", diags)
	}
}

func TestPacket_MaxAge(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
		wantOK bool
	}{
		{header: "max-age=1800", want: 30 * time.Minute, wantOK: true},
		{header: "no-cache, max-age = 60", want: time.Minute, wantOK: true},
		{header: "MAX-AGE=\"5\"", want: 5 * time.Second, wantOK: true},
		{header: "max-age=abc"},
		{header: "max-age=-1"},
		{header: "no-cache"},
		{header: ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			pkt := &Packet{Method: ssdp.MethodNotify}
			if tt.header != "" {
				pkt.setHeader("CACHE-CONTROL", tt.header)
			}
			got, ok := pkt.MaxAge()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MaxAge() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPacket_String(t *testing.T) {
	pkt := &Packet{Method: ssdp.MethodResponse, ST: "a", Location: "b"}
	pkt.setHeader("EXT", "x")
	want := `RESPONSE{st="a", location="b", extra=1}`
	if got := pkt.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{Kind: EmptyValue, Line: 4, Text: "ST:"}
	if got := d.String(); got != `line 4: empty value: "ST:"` {
		t.Errorf("String() = %s", got)
	}
}
