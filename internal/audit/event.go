package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampFormat is the layout of the "timestamp" field of every journal line.
const TimestampFormat = time.RFC3339Nano

// eventAlias drops AuditEvent's methods so the codecs below do not recurse.
type eventAlias AuditEvent

// wireEvent shadows the embedded Timestamp with its string form.
type wireEvent struct {
	Timestamp string `json:"timestamp"`
	*eventAlias
}

// MarshalJSON writes the timestamp in UTC using TimestampFormat.
func (e AuditEvent) MarshalJSON() ([]byte, error) {
	alias := eventAlias(e)
	return json.Marshal(wireEvent{
		Timestamp:  e.Timestamp.UTC().Format(TimestampFormat),
		eventAlias: &alias,
	})
}

// UnmarshalJSON implements json.Unmarshaler for AuditEvent.
func (e *AuditEvent) UnmarshalJSON(data []byte) error {
	w := wireEvent{eventAlias: (*eventAlias)(e)}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	t, err := time.Parse(TimestampFormat, w.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", w.Timestamp, err)
	}
	e.Timestamp = t
	return nil
}

// MarshalJSONLine marshals an AuditEvent to a JSON line (no trailing newline).
func (e AuditEvent) MarshalJSONLine() ([]byte, error) {
	return e.MarshalJSON()
}

// UnmarshalJSONLine unmarshals a JSON line into an AuditEvent.
func UnmarshalJSONLine(data []byte) (*AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// NewCopyEvent builds the COPY record for one copied file.
func NewCopyEvent(runID RunID, source, destination string, identity *FileIdentity, overwrote bool) AuditEvent {
	event := AuditEvent{
		Timestamp:       time.Now().UTC(),
		RunID:           runID,
		EventType:       EventCopy,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: destination,
		FileIdentity:    identity,
	}
	if overwrote {
		event.ReasonCode = ReasonOverwritten
	}
	return event
}

// NewSkipEvent builds the SKIP record for an input file with no reference counterpart.
func NewSkipEvent(runID RunID, source string) AuditEvent {
	return AuditEvent{
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		EventType:  EventSkip,
		Status:     StatusSkipped,
		SourcePath: source,
		ReasonCode: ReasonNoMatch,
	}
}

// NewErrorEvent builds the ERROR record for a failed operation.
func NewErrorEvent(runID RunID, path, operation string, err error) AuditEvent {
	return AuditEvent{
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		EventType:  EventError,
		Status:     StatusFailure,
		SourcePath: path,
		ErrorDetails: &ErrorDetails{
			ErrorType:    fmt.Sprintf("%T", err),
			ErrorMessage: err.Error(),
			Operation:    operation,
		},
	}
}
