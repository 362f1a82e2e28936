package orchestrator

import (
	"time"

	"matchcopy/internal/audit"
)

// Summary contains the results of one run.
type Summary struct {
	RunID          audit.RunID // empty when the audit journal is disabled
	DryRun         bool
	InputFiles     int      // input files ending in the extension
	ReferenceNames int      // distinct normalized reference names
	Copied         []string // names copied (or that would be copied), in order
	Skipped        []string // input names without a reference counterpart
	Duration       time.Duration
}

// CopiedCount returns the number of files copied.
func (s *Summary) CopiedCount() int {
	return len(s.Copied)
}

// SkippedCount returns the number of input files left behind.
func (s *Summary) SkippedCount() int {
	return len(s.Skipped)
}

// AuditSummary converts the summary into the counts stored with RUN_END.
func (s *Summary) AuditSummary(errors int) audit.RunSummary {
	return audit.RunSummary{
		InputFiles:     s.InputFiles,
		ReferenceNames: s.ReferenceNames,
		Copied:         s.CopiedCount(),
		Skipped:        s.SkippedCount(),
		Errors:         errors,
	}
}
