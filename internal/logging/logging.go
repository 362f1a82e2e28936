// Package logging configures the process-wide slog logger.
//
// Diagnostics go to stderr at warn level by default. Verbose mode lowers the
// level to debug. When a filename is configured the logger writes to a
// size-rotated file instead.
package logging

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging settings.
type Config struct {
	Filename   string `yaml:"filename" mapstructure:"filename"`
	Level      string `yaml:"level" mapstructure:"level"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // megabytes
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // rotated files kept
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// Defaults
const (
	DefaultLevel      = "warn"
	DefaultMaxSize    = 10
	DefaultMaxBackups = 3
	DefaultMaxAge     = 28
	DefaultCompress   = true
)

// DefaultConfig returns a Config that logs warnings to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}

// ParseLevel maps a level name or slog number to a slog.Level.
// The boolean is false for unrecognized input.
func ParseLevel(value string) (slog.Level, bool) {
	level := strings.ToLower(strings.TrimSpace(value))

	switch level {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n), true
	}

	return slog.LevelWarn, false
}

// New builds a logger from cfg. stderr is used when cfg.Filename is empty.
// The returned closer releases the file sink and is never nil.
func New(cfg Config, verbose bool, stderr io.Writer) (*slog.Logger, io.Closer) {
	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}

	var sink io.Writer = stderr
	var closer io.Closer = nopCloser{}

	if strings.TrimSpace(cfg.Filename) != "" {
		fileSink := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		sink = fileSink
		closer = fileSink
	}

	handler := slog.NewTextHandler(sink, &slog.HandlerOptions{
		AddSource: verbose,
		Level:     level,
	})

	return slog.New(handler), closer
}

// Configure builds a logger with New and installs it as the slog default.
func Configure(cfg Config, verbose bool, stderr io.Writer) io.Closer {
	logger, closer := New(cfg, verbose, stderr)
	slog.SetDefault(logger)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
