package protocol

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/ssdp"
	"go.uber.org/zap"
)

// DiagnosticKind classifies a part of a datagram the parser skipped
type DiagnosticKind int

const (
	// UnknownMethod means the datagram does not start with a known request
	// line. No packet is produced.
	UnknownMethod DiagnosticKind = iota
	// MalformedLine means a header line starts with a colon or has none
	MalformedLine
	// EmptyValue means a header line has nothing after the colon
	EmptyValue
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownMethod:
		return "unknown method"
	case MalformedLine:
		return "malformed line"
	case EmptyValue:
		return "empty value"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic describes one skipped line
type Diagnostic struct {
	Kind DiagnosticKind
	Line int    // 1-based, the request line is line 1
	Text string // Raw line without CRLF
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Kind, d.Text)
}

// maxDiagnosticText bounds the line text kept for an unknown request line
const maxDiagnosticText = 64

var crlf = []byte("\r\n")

var requestLines = []struct {
	line   string
	method ssdp.Method
}{
	{MSearchLine, ssdp.MethodMSearch},
	{NotifyLine, ssdp.MethodNotify},
	{ResponseLine, ssdp.MethodResponse},
}

// Parser turns datagrams into Packets
type Parser struct {
	logger *zap.Logger
	now    func() time.Time
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithClock sets the clock used for Packet.ReceivedAt
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

// NewParser creates a parser. A nil logger disables logging.
func NewParser(logger *zap.Logger, opts ...ParserOption) *Parser {
	p := &Parser{
		logger: logging.OrNop(logger).Named("protocol"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse classifies data and extracts its headers.
//
// It returns a nil Packet when the request line is not recognised. Otherwise
// the Packet holds every header that parsed, and the diagnostics list the
// lines that were skipped in the order they appeared.
func (p *Parser) Parse(data []byte) (*Packet, []Diagnostic) {
	receivedAt := p.now()

	method, rest := classify(data)
	if method == ssdp.MethodUnknown {
		d := Diagnostic{Kind: UnknownMethod, Line: 1, Text: firstLine(data)}
		p.logger.Warn("Unknown request line",
			zap.String("line", d.Text),
			zap.Int("bytes", len(data)),
		)
		return nil, []Diagnostic{d}
	}

	pkt := &Packet{Method: method, ReceivedAt: receivedAt}
	var diags []Diagnostic

	lineNo := 1
	for {
		end := bytes.Index(rest, crlf)
		if end < 0 {
			break
		}
		line := rest[:end]
		rest = rest[end+len(crlf):]
		lineNo++

		if len(line) == 0 {
			continue
		}
		if d, ok := p.parseLine(pkt, line, lineNo); !ok {
			diags = append(diags, d)
		}
	}

	if len(rest) > 0 {
		p.logger.Debug("Ignoring unterminated trailing data", zap.Int("bytes", len(rest)))
	}

	return pkt, diags
}

// parseLine applies one header line to pkt
func (p *Parser) parseLine(pkt *Packet, line []byte, lineNo int) (Diagnostic, bool) {
	colon := bytes.IndexByte(line, ':')
	if colon < 1 {
		d := Diagnostic{Kind: MalformedLine, Line: lineNo, Text: string(line)}
		p.logger.Warn("Skipping malformed header line",
			zap.Int("line", lineNo),
			zap.String("text", d.Text),
		)
		return d, false
	}

	if colon == len(line)-1 {
		d := Diagnostic{Kind: EmptyValue, Line: lineNo, Text: string(line)}
		p.logger.Debug("Skipping header with empty value",
			zap.Int("line", lineNo),
			zap.String("text", d.Text),
		)
		return d, false
	}

	value := string(line[colon+1:])
	name := strings.ToUpper(string(line[:colon]))
	switch name {
	case HeaderST:
		pkt.ST = value
	case HeaderUSN:
		pkt.USN = value
	case HeaderLocation:
		pkt.Location = value
	case HeaderSMID:
		pkt.SMID = value
	case HeaderDeviceType:
		pkt.DeviceType = value
	default:
		pkt.setHeader(name, value)
	}
	return Diagnostic{}, true
}

// classify matches the request line and returns the bytes after it
func classify(data []byte) (ssdp.Method, []byte) {
	for _, rl := range requestLines {
		if bytes.HasPrefix(data, []byte(rl.line)) {
			return rl.method, data[len(rl.line):]
		}
	}
	return ssdp.MethodUnknown, nil
}

func firstLine(data []byte) string {
	if i := bytes.Index(data, crlf); i >= 0 {
		data = data[:i]
	}
	if len(data) > maxDiagnosticText {
		data = data[:maxDiagnosticText]
	}
	return string(data)
}
