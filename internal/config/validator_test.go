package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcopy/internal/logging"
	"matchcopy/internal/scanner"
)

func validSettings() *Settings {
	return &Settings{
		Suffix:        DefaultSuffix,
		Extension:     DefaultExtension,
		SymlinkPolicy: scanner.SymlinkPolicyFollow,
		Log:           logging.DefaultConfig(),
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
			Ignore:   DefaultIgnorePatterns(),
		},
	}
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	result := ValidateSettings(validSettings())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestExtensionWithoutDotIsWarning(t *testing.T) {
	s := validSettings()
	s.Extension = "png"

	result := ValidateSettings(s)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, KeyExtension, result.Warnings[0].Field)
	assert.Equal(t, SeverityWarning, result.Warnings[0].Severity)
}

func TestQuietWithVerboseIsWarning(t *testing.T) {
	s := validSettings()
	s.Quiet = true
	s.Verbose = true

	result := ValidateSettings(s)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, KeyQuiet, result.Warnings[0].Field)
}

func TestValidateSettingsCollectsAllErrors(t *testing.T) {
	s := validSettings()
	s.Log.Level = "loud"
	s.SymlinkPolicy = "sometimes"
	s.Watch.Debounce = -time.Second

	result := ValidateSettings(s)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 3)

	fields := []string{result.Errors[0].Field, result.Errors[1].Field, result.Errors[2].Field}
	assert.ElementsMatch(t, []string{KeyLogLevel, KeySymlinkPolicy, KeyWatchDebounce}, fields)
}

func TestNumericLogLevelAccepted(t *testing.T) {
	s := validSettings()
	s.Log.Level = "-4"

	assert.True(t, ValidateSettings(s).Valid)
}

func TestSeparatorInMatchingStringsIsWarning(t *testing.T) {
	s := validSettings()
	s.Suffix = "x/y"
	s.Extension = `.p\ng`

	result := ValidateSettings(s)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, KeySuffix, result.Warnings[0].Field)
	assert.Equal(t, KeyExtension, result.Warnings[1].Field)
}

// Property: no suffix is rejected; at worst it produces a warning.
func TestAnySuffixIsValid(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every suffix validates", prop.ForAll(
		func(suffix string) bool {
			s := validSettings()
			s.Suffix = suffix
			return ValidateSettings(s).Valid
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestValidatePathsOutputIsInput(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	ref := filepath.Join(root, "ref")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, os.Mkdir(ref, 0755))

	issues := ValidatePaths(in, ref, in+string(filepath.Separator)+".")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "input folder")
}

func TestValidatePathsOutputIsInputThroughSymlink(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.Mkdir(in, 0755))
	link := filepath.Join(root, "link")
	if err := os.Symlink(in, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	issues := ValidatePaths(in, filepath.Join(root, "ref"), link)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestValidatePathsOutputIsReference(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	ref := filepath.Join(root, "ref")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, os.Mkdir(ref, 0755))

	issues := ValidatePaths(in, ref, ref)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
}

func TestValidatePathsDistinctDirectories(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	ref := filepath.Join(root, "ref")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, os.Mkdir(ref, 0755))

	// The output directory does not exist yet
	assert.Empty(t, ValidatePaths(in, ref, filepath.Join(root, "out")))
}

func TestValidateWatchPathsPromotesReferenceOverlap(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	ref := filepath.Join(root, "ref")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, os.Mkdir(ref, 0755))

	issues := ValidateWatchPaths(in, ref, ref)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)

	assert.Empty(t, ValidateWatchPaths(in, ref, filepath.Join(root, "out")))
}
