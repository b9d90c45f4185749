// Package logging provides structured logging for the SSDP discovery core.
//
// This package builds zap loggers for the CLI and adapts callback-style
// log sinks. Core components never reach for a global logger: each one is
// handed a *zap.Logger at construction and names it after itself
// ("netif", "transport", "protocol", "session", "scanner", "capture").
//
// # Log Levels
//
//   - Debug: hex dumps of datagrams, per-interface sends, dropped interfaces
//   - Info: session lifecycle (receiver opened, announce/search summary)
//   - Warn: unknown SSDP methods, malformed header lines, interface overflow
//   - Error: transport failures
//
// # Configuration
//
//	logger, err := logging.New("debug")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// An empty level falls back to the SSDP_LOG_LEVEL environment variable; if
// that is unset too the logger is silent.
//
// # Callback Sinks
//
// Programs that already route diagnostics through a single callback can
// keep doing so:
//
//	logger := logging.NewSinkLogger(func(file, tag, level string, line int, fn, msg string) int {
//	    fmt.Printf("[%s] %s %s:%d %s\n", level, tag, file, line, msg)
//	    return 0
//	}, "warn")
//
// A nil sink is a silent no-op.
package logging
