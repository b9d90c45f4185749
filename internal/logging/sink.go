package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTag is passed to a Sink when the entry comes from an unnamed logger.
const DefaultTag = "SSDP"

// Sink receives one formatted log line. It mirrors the callback shape of
// C-style discovery libraries: source file, tag, level ("DEBUG", "WARN",
// ...), line number, function name and message. The return value is ignored.
type Sink func(file, tag, level string, line int, function, message string) int

// sinkCore is a zapcore.Core that forwards entries to a Sink.
type sinkCore struct {
	zapcore.LevelEnabler
	sink   Sink
	fields []zapcore.Field
}

// NewSinkCore adapts a Sink to a zap core. A nil sink yields a core that
// discards everything.
func NewSinkCore(sink Sink, enab zapcore.LevelEnabler) zapcore.Core {
	if sink == nil {
		return zapcore.NewNopCore()
	}
	return &sinkCore{LevelEnabler: enab, sink: sink}
}

// NewSinkLogger builds a logger that reports through sink, with caller
// information enabled so file, line and function are populated.
func NewSinkLogger(sink Sink, level string) *zap.Logger {
	return zap.New(NewSinkCore(sink, ParseLevel(level)), zap.AddCaller())
}

// WriterSink returns a Sink that writes one line per entry to w in the form
//
//	[TAG] LEVEL file:line function(): message
func WriterSink(w io.Writer) Sink {
	return func(file, tag, level string, line int, function, message string) int {
		n, _ := fmt.Fprintf(w, "[%s] %-5s %s:%d %s(): %s\n",
			tag, level, filepath.Base(file), line, function, message)
		return n
	}
}

func (c *sinkCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &sinkCore{LevelEnabler: c.LevelEnabler, sink: c.sink, fields: merged}
}

func (c *sinkCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sinkCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := ent.Message
	if len(enc.Fields) > 0 {
		var b strings.Builder
		b.WriteString(msg)
		for _, k := range sortedKeys(enc.Fields) {
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(formatValue(enc.Fields[k]))
		}
		msg = b.String()
	}

	tag := ent.LoggerName
	if tag == "" {
		tag = DefaultTag
	}

	c.sink(ent.Caller.File, tag, ent.Level.CapitalString(), ent.Caller.Line, ent.Caller.Function, msg)
	return nil
}

func (c *sinkCore) Sync() error { return nil }
