package orchestrator

import (
	"fmt"
	"log/slog"

	"matchcopy/internal/audit"
	"matchcopy/internal/organizer"
	"matchcopy/internal/scanner"
)

// recording forwards run events to an optional Recorder.
type recording struct {
	rec    Recorder
	log    *slog.Logger
	runID  audit.RunID
	active bool
}

func newRecording(rec Recorder) *recording {
	return &recording{rec: rec, log: slog.Default()}
}

func (r *recording) start(opts Options) error {
	if r.rec == nil {
		return nil
	}
	r.log = opts.logger()

	runID, err := r.rec.StartRun(opts.AppVersion, map[string]string{
		"inputDir":     opts.InputDir,
		"referenceDir": opts.ReferenceDir,
		"outputDir":    opts.OutputDir,
		"suffix":       opts.Suffix,
		"extension":    opts.Extension,
	})
	if err != nil {
		return fmt.Errorf("failed to start audit run: %w", err)
	}
	r.runID = runID
	r.active = true
	return nil
}

func (r *recording) skip(entry scanner.FileEntry) error {
	if !r.active {
		return nil
	}
	if err := r.rec.WriteEvent(audit.NewSkipEvent(r.runID, entry.FullPath)); err != nil {
		return fmt.Errorf("failed to record skip of %s: %w", entry.Name, err)
	}
	return nil
}

func (r *recording) copied(result *organizer.CopyResult) error {
	if !r.active {
		return nil
	}

	identity, err := audit.CaptureIdentity(result.DestinationPath)
	if err != nil {
		return fmt.Errorf("failed to capture identity of %s: %w", result.DestinationPath, err)
	}

	event := audit.NewCopyEvent(r.runID, result.SourcePath, result.DestinationPath, identity, result.Overwrote)
	if err := r.rec.WriteEvent(event); err != nil {
		return fmt.Errorf("failed to record copy of %s: %w", result.SourcePath, err)
	}
	return nil
}

func (r *recording) complete(summary *Summary) error {
	if !r.active {
		return nil
	}
	r.active = false
	if err := r.rec.EndRun(r.runID, audit.RunStatusCompleted, summary.AuditSummary(0)); err != nil {
		return fmt.Errorf("failed to end audit run: %w", err)
	}
	return nil
}

// fail records the error that stopped the run. Journal write failures here
// are logged, since the run error is already being returned.
func (r *recording) fail(summary *Summary, path, operation string, runErr error) {
	if !r.active {
		return
	}
	r.active = false

	if err := r.rec.WriteEvent(audit.NewErrorEvent(r.runID, path, operation, runErr)); err != nil {
		r.log.Error("failed to record run error", "runID", r.runID, "error", err)
	}
	if err := r.rec.EndRun(r.runID, audit.RunStatusFailed, summary.AuditSummary(1)); err != nil {
		r.log.Error("failed to end audit run", "runID", r.runID, "error", err)
	}
}
