// Package config handles settings loading and validation for matchcopy.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional YAML file named with --config, and command-line flags bound to the
// same keys. Environment variables are not consulted.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"matchcopy/internal/audit"
	"matchcopy/internal/logging"
	"matchcopy/internal/scanner"
	"matchcopy/internal/watcher"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidYAML     ConfigErrorType = "INVALID_YAML"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidYAML:
		return fmt.Sprintf("invalid YAML in configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Keys shared by the viper store, the YAML file and the flag bindings.
const (
	KeySuffix        = "suffix"
	KeyExtension     = "extension"
	KeyDryRun        = "dry_run"
	KeyVerbose       = "verbose"
	KeyQuiet         = "quiet"
	KeySymlinkPolicy = "symlink_policy"

	KeyAuditDirectory = "audit.directory"

	KeyLogFilename   = "log.filename"
	KeyLogLevel      = "log.level"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyLogCompress   = "log.compress"

	KeyWatchDebounce = "watch.debounce"
	KeyWatchIgnore   = "watch.ignore"
)

// Defaults
const (
	DefaultSuffix        = "_pred"
	DefaultExtension     = ".png"
	DefaultWatchDebounce = watcher.DefaultDebounce
)

// DefaultIgnorePatterns are temp-file globs never treated as dataset files in watch mode.
func DefaultIgnorePatterns() []string {
	return watcher.DefaultIgnorePatterns()
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	Ignore   []string      `yaml:"ignore" mapstructure:"ignore"`
}

// Settings holds all settings for matchcopy.
type Settings struct {
	Suffix        string            `yaml:"suffix" mapstructure:"suffix"`
	Extension     string            `yaml:"extension" mapstructure:"extension"`
	DryRun        bool              `yaml:"dry_run" mapstructure:"dry_run"`
	Verbose       bool              `yaml:"verbose" mapstructure:"verbose"`
	Quiet         bool              `yaml:"quiet" mapstructure:"quiet"`
	SymlinkPolicy string            `yaml:"symlink_policy" mapstructure:"symlink_policy"`
	Audit         audit.AuditConfig `yaml:"audit" mapstructure:"audit"`
	Log           logging.Config    `yaml:"log" mapstructure:"log"`
	Watch         WatchConfig       `yaml:"watch" mapstructure:"watch"`
}

// NewStore returns a viper instance holding every default.
func NewStore() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(KeySuffix, DefaultSuffix)
	v.SetDefault(KeyExtension, DefaultExtension)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeySymlinkPolicy, scanner.SymlinkPolicyFollow)

	v.SetDefault(KeyAuditDirectory, "")

	v.SetDefault(KeyLogFilename, "")
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)
	v.SetDefault(KeyLogMaxSize, logging.DefaultMaxSize)
	v.SetDefault(KeyLogMaxBackups, logging.DefaultMaxBackups)
	v.SetDefault(KeyLogMaxAge, logging.DefaultMaxAge)
	v.SetDefault(KeyLogCompress, logging.DefaultCompress)

	v.SetDefault(KeyWatchDebounce, DefaultWatchDebounce)
	v.SetDefault(KeyWatchIgnore, DefaultIgnorePatterns())

	return v
}

// ReadFile merges the YAML file at path into v.
func ReadFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Type: FileNotFound, Path: path}
		}
		return &ConfigError{Type: FileNotFound, Path: path, Message: err.Error()}
	}

	// Parse with yaml.v3 first for a precise error message
	var probe map[string]interface{}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return &ConfigError{Type: InvalidYAML, Path: path, Message: err.Error()}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Type: InvalidYAML, Path: path, Message: err.Error()}
	}

	return nil
}

// FromStore decodes v into Settings and validates the result.
func FromStore(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, &ConfigError{Type: ValidationError, Message: err.Error()}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks field values that do not depend on the filesystem.
func (s *Settings) Validate() error {
	result := ValidateSettings(s)
	for _, w := range result.Warnings {
		slog.Warn(w.Message, "field", w.Field)
	}
	if !result.Valid {
		first := result.Errors[0]
		return &ConfigError{
			Type:    ValidationError,
			Message: first.Field + ": " + first.Message,
		}
	}
	return nil
}

// ScanOptions returns the scanner options these settings describe.
func (s *Settings) ScanOptions() scanner.ScanOptions {
	return scanner.ScanOptions{
		Extension:     s.Extension,
		SymlinkPolicy: s.SymlinkPolicy,
	}
}

// MarshalYAML writes the debounce as a duration string rather than nanoseconds.
func (w WatchConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Debounce string   `yaml:"debounce"`
		Ignore   []string `yaml:"ignore"`
	}{
		Debounce: w.Debounce.String(),
		Ignore:   w.Ignore,
	}, nil
}

// Marshal renders settings as YAML.
func Marshal(s *Settings) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, &ConfigError{Type: InvalidYAML, Message: err.Error()}
	}
	return data, nil
}
