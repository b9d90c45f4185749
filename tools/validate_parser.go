//go:build ignore

// validate_parser replays capture files written by 'ssdpctl listen --capture'
// through the SSDP parser and reports what it made of them.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/ssdp/internal/capture"
	"github.com/muurk/ssdp/internal/protocol"
)

// Statistics tracks parsing results
type Statistics struct {
	TotalFiles    int
	TotalMessages int
	Parsed        int
	Unknown       int
	Methods       map[string]int
	Diagnostics   map[protocol.DiagnosticKind]int
	Failures      []Failure
}

// Failure is a datagram that did not parse cleanly
type Failure struct {
	File   string
	Num    int
	From   string
	Reason string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_parser <directory-or-file>")
		fmt.Println("Example: validate_parser captures/")
		fmt.Println("         validate_parser ssdp.jsonl")
		os.Exit(1)
	}

	path := os.Args[1]
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.jsonl"))
		if err != nil || len(files) == 0 {
			fmt.Printf("No JSONL files found in %s\n", path)
			os.Exit(1)
		}
	}

	stats := Statistics{
		Methods:     make(map[string]int),
		Diagnostics: make(map[protocol.DiagnosticKind]int),
	}
	parser := protocol.NewParser(zap.NewNop())

	fmt.Printf("=== SSDP Parser Validator ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	for _, file := range files {
		processFile(file, parser, &stats)
	}

	printStatistics(&stats)
	if stats.Unknown > 0 {
		os.Exit(2)
	}
}

func processFile(filename string, parser *protocol.Parser, stats *Statistics) {
	stats.TotalFiles++

	records, err := capture.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", filename, err)
	}

	for _, rec := range records {
		stats.TotalMessages++

		payload, err := rec.Payload()
		if err != nil {
			stats.Unknown++
			stats.Failures = append(stats.Failures, Failure{filename, rec.Num, rec.From, fmt.Sprintf("hex decode error: %v", err)})
			continue
		}

		pkt, diags := parser.Parse(payload)
		for _, d := range diags {
			stats.Diagnostics[d.Kind]++
		}
		if pkt == nil {
			stats.Unknown++
			reason := "not an SSDP message"
			if len(diags) > 0 {
				reason = diags[0].String()
			}
			stats.Failures = append(stats.Failures, Failure{filename, rec.Num, rec.From, reason})
			continue
		}

		stats.Parsed++
		stats.Methods[pkt.Method.String()]++
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Total Messages:     %d\n", stats.TotalMessages)
	fmt.Printf("Parsed:             %d (%.2f%%)\n", stats.Parsed, percent(stats.Parsed, stats.TotalMessages))
	fmt.Printf("Not SSDP:           %d (%.2f%%)\n", stats.Unknown, percent(stats.Unknown, stats.TotalMessages))

	fmt.Printf("\n----------------------------------------\n")
	fmt.Printf("METHOD DISTRIBUTION\n")
	fmt.Printf("----------------------------------------\n")
	methods := make([]string, 0, len(stats.Methods))
	for m := range stats.Methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		fmt.Printf("%-10s %d (%.2f%%)\n", m, stats.Methods[m], percent(stats.Methods[m], stats.Parsed))
	}

	if len(stats.Diagnostics) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("DIAGNOSTICS\n")
		fmt.Printf("----------------------------------------\n")
		for _, kind := range []protocol.DiagnosticKind{protocol.UnknownMethod, protocol.MalformedLine, protocol.EmptyValue} {
			if n := stats.Diagnostics[kind]; n > 0 {
				fmt.Printf("%-16s %d\n", kind, n)
			}
		}
	}

	if len(stats.Failures) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("NOT SSDP (%d total)\n", len(stats.Failures))
		fmt.Printf("----------------------------------------\n")

		maxShow := 10
		if len(stats.Failures) > maxShow {
			fmt.Printf("(Showing first %d of %d)\n", maxShow, len(stats.Failures))
		}
		for i, f := range stats.Failures {
			if i >= maxShow {
				break
			}
			fmt.Printf("\n#%d: %s (record %d from %s)\n  %s\n", i+1, f.File, f.Num, f.From, f.Reason)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.Unknown == 0 {
		fmt.Printf("✅ SUCCESS: All datagrams parsed as SSDP\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d datagrams were not SSDP\n", stats.Unknown)
	}
	fmt.Printf("========================================\n")
}
