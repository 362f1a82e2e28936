package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrRunNotFound is returned when a run ID does not appear in the journal.
var ErrRunNotFound = errors.New("run not found")

// AuditReader reads and parses events from the journal.
type AuditReader struct {
	logDir string
}

// NewAuditReader creates a new AuditReader for the given log directory.
func NewAuditReader(logDir string) *AuditReader {
	return &AuditReader{
		logDir: logDir,
	}
}

// LogPath returns the path of the journal file.
func (r *AuditReader) LogPath() string {
	return filepath.Join(r.logDir, logFileName)
}

// ReadEvents returns every event in the journal in file order.
// A missing journal yields no events and no error.
func (r *AuditReader) ReadEvents() ([]AuditEvent, error) {
	file, err := os.Open(r.LogPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []AuditEvent{}, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)

	const maxScanTokenSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := UnmarshalJSONLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		events = append(events, *event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return events, nil
}

// ListRuns returns all runs with summary information, oldest first.
func (r *AuditReader) ListRuns() ([]RunInfo, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	byRun := make(map[RunID][]AuditEvent)
	for _, event := range events {
		// LOG_INITIALIZED and other system events carry no run
		if event.RunID == "" {
			continue
		}
		byRun[event.RunID] = append(byRun[event.RunID], event)
	}

	runs := make([]RunInfo, 0, len(byRun))
	for runID, events := range byRun {
		runs = append(runs, buildRunInfo(runID, events))
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})

	return runs, nil
}

// GetRun returns all events for a specific run.
func (r *AuditReader) GetRun(runID RunID) ([]AuditEvent, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	var runEvents []AuditEvent
	for _, event := range events {
		if event.RunID == runID {
			runEvents = append(runEvents, event)
		}
	}

	if len(runEvents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	return runEvents, nil
}

// buildRunInfo constructs a RunInfo from the events of a single run.
// File events are counted directly; a RUN_END summary, when present, wins.
func buildRunInfo(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:  runID,
		Status: RunStatusInProgress,
	}

	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp
			info.AppVersion = event.Metadata["appVersion"]
			info.InputDir = event.Metadata["inputDir"]
			info.ReferenceDir = event.Metadata["referenceDir"]
			info.OutputDir = event.Metadata["outputDir"]

		case EventRunEnd:
			endTime := event.Timestamp
			info.EndTime = &endTime
			if status, ok := event.Metadata["status"]; ok {
				info.Status = RunStatus(status)
			}
			info.Summary = parseSummaryFromMetadata(event.Metadata)
			return info

		case EventCopy:
			info.Summary.Copied++

		case EventSkip:
			info.Summary.Skipped++

		case EventError:
			info.Summary.Errors++
		}
	}

	return info
}

func parseSummaryFromMetadata(metadata map[string]string) RunSummary {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(metadata[key])
		return n
	}

	return RunSummary{
		InputFiles:     atoi("inputFiles"),
		ReferenceNames: atoi("referenceNames"),
		Copied:         atoi("copied"),
		Skipped:        atoi("skipped"),
		Errors:         atoi("errors"),
	}
}
