// Package ui provides terminal output components for the ssdpctl CLI.
//
// This package uses Lipgloss to render styled output for one-shot commands.
// Unlike the interactive monitor in package tui, these components follow a
// "print and exit" pattern.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Result boxes: success and failure boxes with details or troubleshooting
//   - Tables: interfaces, per-interface send results and discovered peers
//   - Packets: one line per received datagram, or a raw box with CRLF shown
//
// # Usage Pattern
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Search", "ssdpctl search ssdp:all", map[string]string{
//	    "Port": "1900",
//	})
//	p.PrintSendResults("M-SEARCH", results)
//
// # Terminal Width
//
// Rendering adapts to the terminal width reported by golang.org/x/term,
// clamped between MinTerminalWidth and MaxContentWidth. Output that is not a
// terminal gets MinTerminalWidth.
package ui
