package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newPlain(verbose, quiet, tty bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	out := New(Config{
		Verbose:   verbose,
		Quiet:     quiet,
		Writer:    &stdout,
		ErrWriter: &stderr,
		IsTTY:     tty,
	})
	return out, &stdout, &stderr
}

func TestCopiedLineFormat(t *testing.T) {
	out, stdout, _ := newPlain(false, false, false)

	out.Copied("a.png")
	out.Copied("b.png")

	if got, want := stdout.String(), "Copied: a.png\nCopied: b.png\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWouldCopyLineFormat(t *testing.T) {
	out, stdout, _ := newPlain(false, false, false)

	out.WouldCopy("a.png")

	if got, want := stdout.String(), "Would copy: a.png\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestQuietSuppressesConfirmations(t *testing.T) {
	out, stdout, _ := newPlain(false, true, false)

	out.Copied("a.png")
	out.WouldCopy("b.png")
	out.Summary(1, 2, 3, false, time.Second)

	if stdout.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", stdout.String())
	}
}

func TestSkippedOnlyWhenVerbose(t *testing.T) {
	out, stdout, _ := newPlain(false, false, false)
	out.Skipped("c.png")
	if stdout.Len() != 0 {
		t.Errorf("expected no skip line without verbose, got %q", stdout.String())
	}

	out, stdout, _ = newPlain(true, false, false)
	out.Skipped("c.png")
	if got := stdout.String(); got != "Skipped: c.png\n" {
		t.Errorf("expected skip line, got %q", got)
	}
}

func TestSummaryLine(t *testing.T) {
	out, stdout, _ := newPlain(false, false, false)
	out.Summary(2, 3, 2, false, 1500*time.Microsecond)
	if got := stdout.String(); !strings.HasPrefix(got, "Copied 2 of 3 input files (2 reference names) in ") {
		t.Errorf("unexpected summary: %q", got)
	}

	out, stdout, _ = newPlain(false, false, false)
	out.Summary(0, 3, 0, true, 0)
	if got := stdout.String(); !strings.HasPrefix(got, "Would copy 0 of 3 input files") {
		t.Errorf("unexpected dry-run summary: %q", got)
	}
}

func TestColorWrapsLabels(t *testing.T) {
	var buf bytes.Buffer
	out := New(Config{Writer: &buf, ErrWriter: &buf, Color: true})

	out.Copied("a.png")

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escape with color enabled, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "a.png") {
		t.Errorf("expected filename in output, got %q", buf.String())
	}
}

func TestVerboseOutputOnlyAppearsWhenEnabled(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		expectEmpty bool
	}{
		{"verbose disabled - no output", false, true},
		{"verbose enabled - has output", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf, _ := newPlain(tt.verbose, false, false)

			out.Verbose("test message")

			if tt.expectEmpty && buf.Len() > 0 {
				t.Errorf("expected no output when verbose disabled, got: %q", buf.String())
			}
			if !tt.expectEmpty && !strings.Contains(buf.String(), "test message") {
				t.Errorf("expected output to contain 'test message', got: %q", buf.String())
			}
		})
	}
}

func TestErrorOutputGoesToErrWriter(t *testing.T) {
	out, stdout, stderr := newPlain(false, false, false)

	out.Error("boom")

	if stdout.Len() > 0 {
		t.Errorf("expected no stdout output for Error, got: %q", stdout.String())
	}
	if got := stderr.String(); got != "Error: boom\n" {
		t.Errorf("expected %q, got %q", "Error: boom\n", got)
	}
}

func TestProgressFormatMatchesPattern(t *testing.T) {
	out, buf, _ := newPlain(false, false, true)

	out.StartProgress(10)
	out.UpdateProgress(5, "")

	if !strings.Contains(buf.String(), "\rChecking file 5/10...") {
		t.Errorf("expected progress format 'Checking file 5/10...', got: %q", buf.String())
	}
}

func TestProgressSuppressedWhenNotTTYOrVerbose(t *testing.T) {
	for _, tc := range []struct {
		name    string
		verbose bool
		tty     bool
	}{
		{"not a tty", false, false},
		{"verbose", true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, buf, _ := newPlain(tc.verbose, false, tc.tty)

			out.StartProgress(3)
			out.UpdateProgress(1, "")
			out.EndProgress()

			if buf.Len() != 0 {
				t.Errorf("expected no progress output, got %q", buf.String())
			}
		})
	}
}

func TestInfoClearsActiveProgress(t *testing.T) {
	out, buf, _ := newPlain(false, false, true)

	out.StartProgress(2)
	out.UpdateProgress(1, "")
	out.Copied("a.png")

	got := buf.String()
	clear := "\r" + strings.Repeat(" ", 60) + "\r"
	if !strings.Contains(got, clear+"Copied: a.png\n") {
		t.Errorf("expected progress line to be cleared before Copied line, got %q", got)
	}
}

func TestNewWithNilWriters(t *testing.T) {
	out := New(Config{})
	if out.config.Writer == nil || out.config.ErrWriter == nil {
		t.Error("nil writers should default to stdout/stderr")
	}
}

// Property: every progress update follows the "Checking file N/M..." format.
func TestProgressIndicatorFormat(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	pattern := regexp.MustCompile(`^\rChecking file (\d+)/(\d+)\.\.\.$`)

	properties.Property("progress updates render current and total", prop.ForAll(
		func(total int, current int) bool {
			var buf bytes.Buffer
			out := New(Config{Writer: &buf, ErrWriter: &buf, IsTTY: true})

			out.StartProgress(total)
			out.UpdateProgress(current, "")

			return pattern.MatchString(buf.String())
		},
		gen.IntRange(1, 10000),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t)
}
