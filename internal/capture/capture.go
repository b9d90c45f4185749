// Package capture records received datagrams as JSON Lines so that traffic
// can be replayed through the parser later.
package capture

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ssdp/internal/logging"
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/transport"
)

// Record is one captured datagram
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	Num          int       `json:"num"`
	From         string    `json:"from"`
	Method       string    `json:"method"`
	Length       int       `json:"length"`
	PayloadHex   string    `json:"payload_hex"`
	PayloadASCII string    `json:"payload_ascii"`
}

// Payload decodes the captured bytes
func (r Record) Payload() ([]byte, error) {
	return hex.DecodeString(r.PayloadHex)
}

// Writer appends records to a JSONL file
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	n      int
	logger *zap.Logger
}

// Create opens path for appending, creating it if needed
func Create(path string, logger *zap.Logger) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	return &Writer{f: f, logger: logging.OrNop(logger).Named("capture")}, nil
}

// Write appends one datagram. pkt may be nil for datagrams that did not
// parse.
func (w *Writer) Write(dg transport.Datagram, pkt *protocol.Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.n++
	rec := Record{
		Timestamp:    dg.ReceivedAt,
		Num:          w.n,
		Length:       len(dg.Data),
		PayloadHex:   hex.EncodeToString(dg.Data),
		PayloadASCII: toASCII(dg.Data),
	}
	if dg.From != nil {
		rec.From = dg.From.String()
	}
	if pkt != nil {
		rec.Method = pkt.Method.String()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal capture record: %w", err)
	}
	if _, err := w.f.Write(append(data, '\n')); err != nil {
		w.logger.Error("Failed to write capture record", zap.String("file", w.f.Name()), zap.Error(err))
		return err
	}
	return nil
}

// Consume records the datagram and logs failures. It has the
// discovery.Consumer signature.
func (w *Writer) Consume(dg transport.Datagram, pkt *protocol.Packet) {
	_ = w.Write(dg, pkt)
}

// Count returns the number of records written
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Close closes the file
func (w *Writer) Close() error {
	return w.f.Close()
}

// Read decodes records from r. Blank lines are skipped.
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return out, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// ReadFile decodes every record in a capture file
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

func toASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b < 127 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
