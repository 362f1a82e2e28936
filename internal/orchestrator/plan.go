package orchestrator

import (
	"fmt"

	"matchcopy/internal/matcher"
	"matchcopy/internal/scanner"
)

// PlannedCopy is one copy a run would perform.
type PlannedCopy struct {
	Name            string
	SourcePath      string
	DestinationPath string
}

// RunPlan is the outcome of matching without copying.
type RunPlan struct {
	References matcher.ReferenceSet
	Inputs     []scanner.FileEntry // candidates after the extension filter, sorted
	Copies     []PlannedCopy
	Skips      []scanner.FileEntry
	matched    map[string]struct{}
}

// Plan lists both directories and computes which input files a run would
// copy. It never writes to the filesystem, so a missing output directory is
// not an error.
func Plan(opts Options) (*RunPlan, error) {
	if err := opts.checkPaths(); err != nil {
		return nil, err
	}
	return buildPlan(opts)
}

func buildPlan(opts Options) (*RunPlan, error) {
	scanOpts := opts.scanOptions()

	refs, err := scanner.ScanWithOptions(opts.ReferenceDir, scanOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan reference folder: %w", err)
	}
	set := matcher.NewReferenceSet(scanner.Names(refs), opts.Suffix)

	inputs, err := scanner.ScanWithOptions(opts.InputDir, scanOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input folder: %w", err)
	}

	result := matcher.Match(inputs, set)

	plan := &RunPlan{
		References: set,
		Inputs:     inputs,
		Copies:     make([]PlannedCopy, 0, len(result.Matched)),
		Skips:      result.Unmatched,
		matched:    make(map[string]struct{}, len(result.Matched)),
	}
	for _, entry := range result.Matched {
		plan.Copies = append(plan.Copies, PlannedCopy{
			Name:            entry.Name,
			SourcePath:      entry.FullPath,
			DestinationPath: destination(opts.OutputDir, entry),
		})
		plan.matched[entry.Name] = struct{}{}
	}

	return plan, nil
}

func (p *RunPlan) isMatch(name string) bool {
	_, ok := p.matched[name]
	return ok
}

// CopyNames returns the names of the planned copies in input order.
func (p *RunPlan) CopyNames() []string {
	names := make([]string, len(p.Copies))
	for i, c := range p.Copies {
		names[i] = c.Name
	}
	return names
}
