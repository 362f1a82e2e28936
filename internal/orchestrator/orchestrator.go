// Package orchestrator coordinates the match-and-copy workflow for matchcopy.
package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"matchcopy/internal/audit"
	"matchcopy/internal/config"
	"matchcopy/internal/organizer"
	"matchcopy/internal/output"
	"matchcopy/internal/scanner"
)

// Recorder receives the audit trail of a run. *audit.AuditWriter implements it.
type Recorder interface {
	StartRun(appVersion string, metadata map[string]string) (audit.RunID, error)
	WriteEvent(event audit.AuditEvent) error
	EndRun(runID audit.RunID, status audit.RunStatus, summary audit.RunSummary) error
}

// Options describes one alignment run.
type Options struct {
	InputDir      string
	ReferenceDir  string
	OutputDir     string
	Suffix        string
	Extension     string
	SymlinkPolicy string
	DryRun        bool

	AppVersion string
	Output     *output.Output // nil discards console lines
	Recorder   Recorder       // nil disables the audit journal
	Logger     *slog.Logger   // nil uses slog.Default()
}

// NewOptions returns Options for the three directories with the default
// suffix and extension.
func NewOptions(inputDir, referenceDir, outputDir string) Options {
	return Options{
		InputDir:      inputDir,
		ReferenceDir:  referenceDir,
		OutputDir:     outputDir,
		Suffix:        config.DefaultSuffix,
		Extension:     config.DefaultExtension,
		SymlinkPolicy: scanner.SymlinkPolicyFollow,
	}
}

// OptionsFromSettings builds Options from loaded settings.
func OptionsFromSettings(s *config.Settings, inputDir, referenceDir, outputDir string) Options {
	return Options{
		InputDir:      inputDir,
		ReferenceDir:  referenceDir,
		OutputDir:     outputDir,
		Suffix:        s.Suffix,
		Extension:     s.Extension,
		SymlinkPolicy: s.SymlinkPolicy,
		DryRun:        s.DryRun,
	}
}

func (o Options) scanOptions() scanner.ScanOptions {
	policy := o.SymlinkPolicy
	if policy == "" {
		policy = scanner.SymlinkPolicyFollow
	}
	return scanner.ScanOptions{
		Extension:     o.Extension,
		SymlinkPolicy: policy,
	}
}

func (o Options) out() *output.Output {
	if o.Output != nil {
		return o.Output
	}
	return output.New(output.Config{Quiet: true, Writer: io.Discard, ErrWriter: io.Discard})
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// checkPaths rejects an output directory that is the input directory and
// logs the remaining findings.
func (o Options) checkPaths() error {
	for _, issue := range config.ValidatePaths(o.InputDir, o.ReferenceDir, o.OutputDir) {
		if issue.Severity == config.SeverityError {
			return &config.ConfigError{Type: config.ValidationError, Message: issue.Field + ": " + issue.Message}
		}
		o.logger().Warn(issue.Message, "field", issue.Field)
	}
	return nil
}

// Run creates the output directory, then copies every input file whose base
// name appears in the reference set built from the reference directory.
//
// Run stops at the first error. Files copied before the error stay in place,
// and the returned Summary describes them. With DryRun set nothing is written
// and matches are reported as "Would copy" lines.
func Run(opts Options) (*Summary, error) {
	if opts.DryRun {
		return runDry(opts)
	}

	start := time.Now()
	out := opts.out()
	log := opts.logger()

	summary := &Summary{Copied: make([]string, 0)}

	if err := opts.checkPaths(); err != nil {
		return summary, err
	}

	rec := newRecording(opts.Recorder)
	if err := rec.start(opts); err != nil {
		return summary, err
	}
	summary.RunID = rec.runID

	fail := func(path, operation string, err error) (*Summary, error) {
		summary.Duration = time.Since(start)
		rec.fail(summary, path, operation, err)
		return summary, err
	}

	if err := organizer.EnsureDir(opts.OutputDir); err != nil {
		return fail(opts.OutputDir, "mkdir", fmt.Errorf("failed to create output folder: %w", err))
	}

	plan, err := buildPlan(opts)
	if err != nil {
		return fail(planErrorPath(err), "scan", err)
	}
	summary.InputFiles = len(plan.Inputs)
	summary.ReferenceNames = plan.References.Len()

	log.Debug("reference set built",
		"referenceDir", opts.ReferenceDir,
		"names", plan.References.Len(),
		"suffix", opts.Suffix,
		"extension", opts.Extension)

	out.StartProgress(len(plan.Inputs))
	for i, entry := range plan.Inputs {
		out.UpdateProgress(i+1, "")

		if !plan.isMatch(entry.Name) {
			log.Debug("no reference match", "name", entry.Name)
			out.Skipped(entry.Name)
			summary.Skipped = append(summary.Skipped, entry.Name)
			if err := rec.skip(entry); err != nil {
				out.EndProgress()
				return fail(entry.FullPath, "audit", err)
			}
			continue
		}

		result, err := organizer.Place(entry, opts.OutputDir)
		if err != nil {
			out.EndProgress()
			return fail(entry.FullPath, "copy", fmt.Errorf("failed to copy %s: %w", entry.Name, err))
		}

		out.Copied(entry.Name)
		summary.Copied = append(summary.Copied, entry.Name)
		log.Debug("copied",
			"source", result.SourcePath,
			"destination", result.DestinationPath,
			"bytes", result.Bytes,
			"overwrote", result.Overwrote)

		if err := rec.copied(result); err != nil {
			out.EndProgress()
			return fail(result.DestinationPath, "audit", err)
		}
	}
	out.EndProgress()

	summary.Duration = time.Since(start)
	if err := rec.complete(summary); err != nil {
		return summary, err
	}

	return summary, nil
}

func runDry(opts Options) (*Summary, error) {
	start := time.Now()
	out := opts.out()

	summary := &Summary{DryRun: true, Copied: make([]string, 0)}

	if err := opts.checkPaths(); err != nil {
		return summary, err
	}

	plan, err := buildPlan(opts)
	if err != nil {
		return summary, err
	}
	summary.InputFiles = len(plan.Inputs)
	summary.ReferenceNames = plan.References.Len()

	for _, entry := range plan.Inputs {
		if plan.isMatch(entry.Name) {
			out.WouldCopy(entry.Name)
			summary.Copied = append(summary.Copied, entry.Name)
		} else {
			out.Skipped(entry.Name)
			summary.Skipped = append(summary.Skipped, entry.Name)
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// planErrorPath extracts the directory a scan error refers to.
func planErrorPath(err error) string {
	var scanErr *scanner.ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Path
	}
	return ""
}

// destination returns where entry is copied to.
func destination(outputDir string, entry scanner.FileEntry) string {
	return filepath.Join(outputDir, entry.Name)
}
