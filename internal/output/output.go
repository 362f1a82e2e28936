// Package output handles console output for matchcopy, including the
// per-file confirmation lines, verbose mode and progress indicators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Quiet     bool      // Suppress per-file confirmation lines and the summary
	Color     bool      // Highlight labels with ANSI colors
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config          Config
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressMu      sync.Mutex

	success *color.Color
	warn    *color.Color
	fail    *color.Color
	label   *color.Color
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}

	o := &Output{
		config:  config,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{o.success, o.warn, o.fail, o.label} {
		if config.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return o
}

// DefaultConfig returns a Config with TTY detection. Color follows the TTY
// unless NO_COLOR is set.
func DefaultConfig() Config {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     isTTY,
		Color:     isTTY && !color.NoColor,
	}
}

// Copied confirms a single copied file.
func (o *Output) Copied(name string) {
	if o.config.Quiet {
		return
	}
	o.Info("%s %s", o.success.Sprint("Copied:"), name)
}

// WouldCopy reports a file a dry run would have copied.
func (o *Output) WouldCopy(name string) {
	if o.config.Quiet {
		return
	}
	o.Info("%s %s", o.warn.Sprint("Would copy:"), name)
}

// Skipped reports an input file without a reference counterpart (verbose only).
func (o *Output) Skipped(name string) {
	o.Verbose("%s %s", o.label.Sprint("Skipped:"), name)
}

// Summary prints the closing line of a run.
func (o *Output) Summary(copied, inputs, references int, dryRun bool, elapsed time.Duration) {
	if o.config.Quiet {
		return
	}
	verb := "Copied"
	if dryRun {
		verb = "Would copy"
	}
	o.Info("%s %d of %d input files (%d reference names) in %s",
		verb, copied, inputs, references, elapsed.Round(time.Millisecond))
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.clearProgressLine()
	fmt.Fprint(o.config.Writer, line(format, args...))
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprint(o.config.Writer, line(format, args...))
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.clearProgressLine()
	fmt.Fprint(o.config.ErrWriter, o.fail.Sprint("Error: ")+line(format, args...))
}

func line(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// clearProgressLine clears the current progress line if active.
func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progressActive && o.config.IsTTY {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
	}
}

// StartProgress begins a progress indicator session.
func (o *Output) StartProgress(total int) {
	// Suppress progress when not TTY or when verbose mode is enabled
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
}

// UpdateProgress updates the progress indicator.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	progressMsg := fmt.Sprintf("\rChecking file %d/%d...", current, o.progressTotal)
	if message != "" {
		progressMsg = fmt.Sprintf("\r%s %d/%d...", message, current, o.progressTotal)
	}
	fmt.Fprint(o.config.Writer, progressMsg)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressActive = false
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
