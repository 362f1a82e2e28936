// Package audit records matchcopy runs in an append-only JSON Lines journal
// so a dataset alignment can be traced back to the files that produced it.
package audit

import "time"

// RunID is a unique identifier for each run, in UUID v4 format.
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File events
	EventCopy  EventType = "COPY"
	EventSkip  EventType = "SKIP"
	EventError EventType = "ERROR"

	// System events
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// ReasonCode provides the reason for a skip or overwrite.
type ReasonCode string

const (
	ReasonNoMatch     ReasonCode = "NO_MATCH"
	ReasonOverwritten ReasonCode = "OVERWRITTEN"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// FileIdentity captures the content identity of a copied file.
type FileIdentity struct {
	ContentHash string    `json:"contentHash"` // SHA-256 hex string
	Size        int64     `json:"size"`        // File size in bytes
	ModTime     time.Time `json:"modTime"`     // File modification timestamp
}

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent represents a single journal record.
type AuditEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	RunID           RunID             `json:"runId"`
	EventType       EventType         `json:"eventType"`
	Status          OperationStatus   `json:"status"`
	SourcePath      string            `json:"sourcePath,omitempty"`
	DestinationPath string            `json:"destinationPath,omitempty"`
	ReasonCode      ReasonCode        `json:"reasonCode,omitempty"`
	FileIdentity    *FileIdentity     `json:"fileIdentity,omitempty"`
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	InputFiles     int `json:"inputFiles"`
	ReferenceNames int `json:"referenceNames"`
	Copied         int `json:"copied"`
	Skipped        int `json:"skipped"`
	Errors         int `json:"errors"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID        RunID      `json:"runId"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Status       RunStatus  `json:"status"`
	AppVersion   string     `json:"appVersion"`
	InputDir     string     `json:"inputDir"`
	ReferenceDir string     `json:"referenceDir"`
	OutputDir    string     `json:"outputDir"`
	Summary      RunSummary `json:"summary"`
}

// AuditConfig holds configuration for the audit journal.
type AuditConfig struct {
	LogDirectory string `yaml:"directory" mapstructure:"directory"`
}

// Enabled reports whether a journal directory is configured.
func (c AuditConfig) Enabled() bool {
	return c.LogDirectory != ""
}

const (
	logFileName  = "matchcopy-audit.jsonl"
	lockFileName = "matchcopy-audit.lock"
)
