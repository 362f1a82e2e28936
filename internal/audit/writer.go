package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// AuditWriter appends events to the journal. Every event is flushed and
// synced before the call returns, under an advisory lock shared by all
// matchcopy processes writing to the same directory.
type AuditWriter struct {
	mu         sync.Mutex
	file       *os.File
	writer     *bufio.Writer
	lock       *flock.Flock
	logPath    string
	currentRun *RunID
}

// NewAuditWriter creates the log directory if needed and opens the journal for
// appending. An empty journal starts with a LOG_INITIALIZED event.
func NewAuditWriter(config AuditConfig) (*AuditWriter, error) {
	if !config.Enabled() {
		return nil, fmt.Errorf("audit log directory is not configured")
	}
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(config.LogDirectory, logFileName)
	lock := flock.New(filepath.Join(config.LogDirectory, lockFileName))

	// Held across creation so only one opener writes LOG_INITIALIZED.
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", lock.Path(), err)
	}
	defer lock.Unlock()

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat audit log: %w", err)
	}

	w := &AuditWriter{
		file:    file,
		writer:  bufio.NewWriter(file),
		lock:    lock,
		logPath: logPath,
	}

	if info.Size() == 0 {
		event := AuditEvent{
			Timestamp: time.Now().UTC(),
			EventType: EventLogInitialized,
			Status:    StatusSuccess,
		}
		data, err := event.MarshalJSONLine()
		if err == nil {
			err = w.appendLine(data)
		}
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}

	return w, nil
}

// GenerateRunID returns a new random run identifier.
func GenerateRunID() RunID {
	return RunID(uuid.NewString())
}

// StartRun writes RUN_START for a new run. metadata carries the run's
// directories and matching options.
func (w *AuditWriter) StartRun(appVersion string, metadata map[string]string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID := GenerateRunID()

	meta := map[string]string{"appVersion": appVersion}
	for k, v := range metadata {
		meta[k] = v
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Metadata:  meta,
	}

	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = &runID
	return runID, nil
}

// WriteEvent writes a single audit event to the log.
func (w *AuditWriter) WriteEvent(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writeEventLocked(event)
}

func (w *AuditWriter) writeEventLocked(event AuditEvent) error {
	data, err := event.MarshalJSONLine()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", w.lock.Path(), err)
	}
	defer w.lock.Unlock()

	return w.appendLine(data)
}

// appendLine writes one journal line and syncs it. The caller holds the lock.
func (w *AuditWriter) appendLine(data []byte) error {
	if _, err := w.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}

	return nil
}

// EndRun records the run completion status and summary.
func (w *AuditWriter) EndRun(runID RunID, status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	opStatus := StatusSuccess
	if status != RunStatusCompleted {
		opStatus = StatusFailure
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunEnd,
		Status:    opStatus,
		Metadata: map[string]string{
			"status":         string(status),
			"inputFiles":     strconv.Itoa(summary.InputFiles),
			"referenceNames": strconv.Itoa(summary.ReferenceNames),
			"copied":         strconv.Itoa(summary.Copied),
			"skipped":        strconv.Itoa(summary.Skipped),
			"errors":         strconv.Itoa(summary.Errors),
		},
	}

	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}

	w.currentRun = nil
	return nil
}

// CurrentRun returns the ID of the run in progress, if any.
func (w *AuditWriter) CurrentRun() (RunID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentRun == nil {
		return "", false
	}
	return *w.currentRun, true
}

// LogPath returns the path of the journal file.
func (w *AuditWriter) LogPath() string {
	return w.logPath
}

// Close flushes any buffered data and closes the audit log file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}
	return nil
}
