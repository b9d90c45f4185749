package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way ssdpctl commands should output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// IsTerminal reports whether stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Print(RenderHeader(title, command, params, p.width))
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.Print(RenderSuccessBox(title, details, p.width))
	p.Newline()
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Print(RenderErrorBox(title, err, troubleshooting, p.width))
	p.Newline()
}

// PrintRaw prints a raw datagram box
func (p *Printer) PrintRaw(title string, data []byte) {
	p.Print(RenderRawBox(title, data, p.width))
	p.Newline()
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params map[string]string, width int) string {
	titleLine := HeaderTitleStyle.Render(strings.ToUpper(title))
	commandLine := HeaderCommandStyle.Render(command)
	topSection := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	if len(params) == 0 {
		return HeaderBorderStyle(width).Render(topSection)
	}

	var paramLines []string
	for _, key := range sortedKeys(params) {
		keyStyled := HeaderParamKeyStyle.Render(key + ":")
		valueStyled := HeaderParamValueStyle.Render(params[key])
		paramLines = append(paramLines, keyStyled+" "+valueStyled)
	}
	paramsSection := strings.Join(paramLines, "\n")

	dividerWidth := width - 6 // Account for border and padding
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := RenderHorizontalDivider(dividerWidth, "─")

	content := lipgloss.JoinVertical(lipgloss.Left, topSection, divider, paramsSection)
	return HeaderBorderStyle(width).Render(content)
}

// RenderSuccessBox renders a success result box
func RenderSuccessBox(title string, details map[string]string, width int) string {
	var lines []string

	titleLine := SuccessTitleStyle.Render("   " + SuccessMarker + "  SUCCESS  ─  " + title)
	lines = append(lines, "", titleLine, "")

	for _, key := range sortedKeys(details) {
		keyStyled := ResultKeyStyle.Render("   " + key + ":")
		valueStyled := ResultValueStyle.Render(details[key])
		lines = append(lines, keyStyled+" "+valueStyled)
	}

	lines = append(lines, "")
	return SuccessBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderErrorBox renders an error result box with troubleshooting
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	var lines []string

	titleLine := ErrorTitleStyle.Render("   " + FailureMarker + "  FAILED  ─  " + title)
	lines = append(lines, "", titleLine, "")

	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+err.Error()), "")
	}

	if len(troubleshooting) > 0 {
		var troubleLines []string
		troubleLines = append(troubleLines, TroubleshootingTitleStyle.Render("Troubleshooting:"), "")
		for _, tip := range troubleshooting {
			troubleLines = append(troubleLines, TroubleshootingItemStyle.Render("  • "+tip))
		}
		troubleBox := TroubleshootingBoxStyle(width).Render(strings.Join(troubleLines, "\n"))
		lines = append(lines, troubleBox, "")
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderRawBox renders datagram bytes with CR LF made visible
func RenderRawBox(title string, data []byte, width int) string {
	text := strings.ReplaceAll(string(data), "\r\n", "␍␊\n")
	text = strings.TrimSuffix(text, "\n")

	titleLine := RawTitleStyle.Render(title)
	content := RawContentStyle.Render(text)
	return RawBoxStyle(width).Render(lipgloss.JoinVertical(lipgloss.Left, titleLine, content))
}

// RenderHorizontalDivider renders a line of width copies of char
func RenderHorizontalDivider(width int, char string) string {
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat(char, width))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
