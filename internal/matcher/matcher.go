// Package matcher pairs input files with reference files by normalized base name.
package matcher

import (
	"sort"

	"matchcopy/internal/normalizer"
	"matchcopy/internal/scanner"
)

// ReferenceSet holds the normalized base names derived from a reference
// directory. It is built once per run and never mutated afterwards.
type ReferenceSet struct {
	names map[string]struct{}
}

// NewReferenceSet normalizes each reference filename with suffix and collects
// the results. Duplicates collapse.
func NewReferenceSet(filenames []string, suffix string) ReferenceSet {
	names := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		names[normalizer.BaseName(f, suffix)] = struct{}{}
	}
	return ReferenceSet{names: names}
}

// Contains reports whether base is a normalized reference name.
func (s ReferenceSet) Contains(base string) bool {
	_, ok := s.names[base]
	return ok
}

// Len returns the number of distinct normalized names.
func (s ReferenceSet) Len() int {
	return len(s.names)
}

// Keys returns the normalized names in sorted order.
func (s ReferenceSet) Keys() []string {
	keys := make([]string, 0, len(s.names))
	for k := range s.names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MatchResult partitions input entries by reference membership.
type MatchResult struct {
	Matched   []scanner.FileEntry
	Unmatched []scanner.FileEntry
}

// Match tests each input entry's base name against the reference set.
// Input order is preserved in both partitions.
func Match(inputs []scanner.FileEntry, refs ReferenceSet) *MatchResult {
	result := &MatchResult{
		Matched:   make([]scanner.FileEntry, 0),
		Unmatched: make([]scanner.FileEntry, 0),
	}

	for _, entry := range inputs {
		if refs.Contains(normalizer.StripExt(entry.Name)) {
			result.Matched = append(result.Matched, entry)
		} else {
			result.Unmatched = append(result.Unmatched, entry)
		}
	}

	return result
}
