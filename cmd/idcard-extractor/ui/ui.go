// Package ui provides terminal output helpers for the extractor CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var (
	out         io.Writer = os.Stdout
	errOut      io.Writer = os.Stderr
	verboseFlag bool

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	keyColor     = color.New(color.Bold)
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}

// SetOutput redirects normal and error output.
func SetOutput(stdout, stderr io.Writer) {
	out = stdout
	errOut = stderr
}

// Verbose reports whether verbose output was requested.
func Verbose() bool {
	return verboseFlag
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(errOut))
	s.Suffix = " " + message
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() {
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// UpdateMessage updates the spinner's message.
func (s *Spinner) UpdateMessage(message string) {
	s.spinner.Lock()
	s.spinner.Suffix = " " + message
	s.spinner.Unlock()
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	successColor.Fprintf(out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

func Warning(format string, args ...interface{}) {
	warnColor.Fprintf(errOut, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info displays an informational message on stderr, keeping stdout for data.
func Info(format string, args ...interface{}) {
	infoColor.Fprintf(errOut, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// KeyValue prints an aligned key/value line on stderr.
func KeyValue(key, value string) {
	keyColor.Fprintf(errOut, "  %-20s", key+":")
	fmt.Fprintln(errOut, value)
}

// Section prints a heading on stderr.
func Section(title string) {
	fmt.Fprintln(errOut)
	keyColor.Fprintln(errOut, title)
	fmt.Fprintln(errOut, strings.Repeat("─", len([]rune(title))))
}

// Data writes raw output such as JSON to stdout, uncoloured.
func Data(b []byte) {
	out.Write(b)
	if len(b) == 0 || b[len(b)-1] != '\n' {
		fmt.Fprintln(out)
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
