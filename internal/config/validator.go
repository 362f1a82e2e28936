package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"matchcopy/internal/logging"
	"matchcopy/internal/scanner"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Setting or argument with the issue (e.g., "extension")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

func (r *ValidationResult) add(issues []ConfigValidationError) {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			r.Errors = append(r.Errors, issue)
		} else {
			r.Warnings = append(r.Warnings, issue)
		}
	}
	r.Valid = len(r.Errors) == 0
}

// ValidateSettings checks the settings for errors and returns all findings.
func ValidateSettings(s *Settings) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
		Valid:    true,
	}

	result.add(ValidateMatching(s))
	result.add(ValidatePolicies(s))

	return result
}

// ValidateMatching checks the suffix and extension strings.
// Both are compared against bare filenames, so a separator in either is legal
// but can never match and is only reported as a warning.
func ValidateMatching(s *Settings) []ConfigValidationError {
	var errors []ConfigValidationError

	if strings.ContainsAny(s.Suffix, `/\`) {
		errors = append(errors, ConfigValidationError{
			Field:    KeySuffix,
			Message:  "suffix " + strconv.Quote(s.Suffix) + " contains a path separator and will never occur in a filename",
			Severity: SeverityWarning,
		})
	}

	if strings.ContainsAny(s.Extension, `/\`) {
		errors = append(errors, ConfigValidationError{
			Field:    KeyExtension,
			Message:  "extension " + strconv.Quote(s.Extension) + " contains a path separator and will match no files",
			Severity: SeverityWarning,
		})
	}

	if s.Extension != "" && !strings.HasPrefix(s.Extension, ".") {
		errors = append(errors, ConfigValidationError{
			Field:    KeyExtension,
			Message:  "extension " + strconv.Quote(s.Extension) + " does not start with a dot and is matched as a plain name ending",
			Severity: SeverityWarning,
		})
	}

	return errors
}

// ValidatePolicies checks enumerated and numeric settings.
func ValidatePolicies(s *Settings) []ConfigValidationError {
	var errors []ConfigValidationError

	validPolicies := map[string]bool{
		scanner.SymlinkPolicyFollow: true,
		scanner.SymlinkPolicySkip:   true,
		scanner.SymlinkPolicyError:  true,
	}
	if !validPolicies[s.SymlinkPolicy] {
		errors = append(errors, ConfigValidationError{
			Field:    KeySymlinkPolicy,
			Message:  "invalid symlink policy: " + strconv.Quote(s.SymlinkPolicy) + `. Must be "follow", "skip", or "error"`,
			Severity: SeverityError,
		})
	}

	if _, ok := logging.ParseLevel(s.Log.Level); !ok {
		errors = append(errors, ConfigValidationError{
			Field:    KeyLogLevel,
			Message:  "invalid log level: " + strconv.Quote(s.Log.Level),
			Severity: SeverityError,
		})
	}

	if s.Watch.Debounce <= 0 {
		errors = append(errors, ConfigValidationError{
			Field:    KeyWatchDebounce,
			Message:  "debounce must be a positive duration",
			Severity: SeverityError,
		})
	}

	for i, pattern := range s.Watch.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errors = append(errors, ConfigValidationError{
				Field:    KeyWatchIgnore + "[" + strconv.Itoa(i) + "]",
				Message:  "invalid glob pattern: " + strconv.Quote(pattern),
				Severity: SeverityError,
			})
		}
	}

	if s.Verbose && s.Quiet {
		errors = append(errors, ConfigValidationError{
			Field:    KeyQuiet,
			Message:  "quiet and verbose are both set; verbose lines will still be printed",
			Severity: SeverityWarning,
		})
	}

	return errors
}

// ValidatePaths checks the three run directories against each other.
// Copying into the input directory would truncate each source before reading
// it, so an output directory that resolves to the input directory is an error.
func ValidatePaths(inputDir, referenceDir, outputDir string) []ConfigValidationError {
	var errors []ConfigValidationError

	if sameDirectory(inputDir, outputDir) {
		errors = append(errors, ConfigValidationError{
			Field:    "output_folder",
			Message:  "output folder is the input folder: " + outputDir,
			Severity: SeverityError,
		})
	}

	if sameDirectory(referenceDir, outputDir) {
		errors = append(errors, ConfigValidationError{
			Field:    "output_folder",
			Message:  "output folder is the reference folder; copies will mix with reference files",
			Severity: SeverityWarning,
		})
	}

	return errors
}

// ValidateWatchPaths is ValidatePaths for watch mode, where an output folder
// equal to the watched reference folder would re-trigger every run it
// completes. That case is promoted to an error.
func ValidateWatchPaths(inputDir, referenceDir, outputDir string) []ConfigValidationError {
	issues := ValidatePaths(inputDir, referenceDir, outputDir)
	for i := range issues {
		issues[i].Severity = SeverityError
	}
	return issues
}

// sameDirectory reports whether two paths name the same directory, resolving
// symlinks when both exist.
func sameDirectory(dir1, dir2 string) bool {
	info1, err1 := os.Stat(dir1)
	info2, err2 := os.Stat(dir2)
	if err1 == nil && err2 == nil {
		return os.SameFile(info1, info2)
	}

	abs1, err1 := filepath.Abs(dir1)
	abs2, err2 := filepath.Abs(dir2)
	if err1 != nil || err2 != nil {
		return filepath.Clean(dir1) == filepath.Clean(dir2)
	}
	return abs1 == abs2
}
