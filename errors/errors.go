// Package errors defines the structured error records and the exception
// sink shared by the decode and encode pipelines.
package errors

import (
	"errors"
	"fmt"
	"sync"
)

// Severity grades an error record.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

// Kind classifies coder failures for targeted handling and monitoring.
type Kind string

const (
	KindAllocationFailure     Kind = "allocation_failure"
	KindInsufficientInputData Kind = "insufficient_input_data"
	KindUnsupportedVariant    Kind = "unsupported_variant"
	KindCorruptOrUnreadable   Kind = "corrupt_or_unreadable"
	KindExportFailure         Kind = "export_failure"
	KindImportFailure         Kind = "import_failure"
	KindEncodeFailure         Kind = "encode_failure"
	KindStreamOpenFailure     Kind = "stream_open_failure"
)

// CoderError is the structured error type used throughout the module.
// Filename attributes the failure to the image being processed.
type CoderError struct {
	Severity Severity
	Kind     Kind
	Op       string // operation name, e.g. "jxl.decode"
	Filename string
	Err      error
}

func (e *CoderError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("[%s] %s: %v `%s'", e.Kind, e.Op, e.Err, e.Filename)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *CoderError) Unwrap() error { return e.Err }

// New creates a fatal CoderError.
func New(kind Kind, op, filename string, err error) *CoderError {
	return &CoderError{Severity: SeverityFatal, Kind: kind, Op: op, Filename: filename, Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *CoderError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// Sink is an append-only journal of error records at graded severities.
// A single Sink is threaded through one decode or encode call; it is safe
// for concurrent use so hosts may share one across calls if they choose.
type Sink struct {
	mu      sync.Mutex
	records []*CoderError
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Record appends e to the journal.
func (s *Sink) Record(e *CoderError) {
	if e == nil {
		return
	}
	s.mu.Lock()
	s.records = append(s.records, e)
	s.mu.Unlock()
}

// Throw records a fatal error and returns it, so call sites can record and
// propagate in one step.
func (s *Sink) Throw(kind Kind, op, filename string, err error) *CoderError {
	e := New(kind, op, filename, err)
	s.Record(e)
	return e
}

// Warn records a warning-severity error.
func (s *Sink) Warn(kind Kind, op, filename string, err error) {
	s.Record(&CoderError{Severity: SeverityWarning, Kind: kind, Op: op, Filename: filename, Err: err})
}

// Info records an informational note.
func (s *Sink) Info(op, filename string, err error) {
	s.Record(&CoderError{Severity: SeverityInfo, Op: op, Filename: filename, Err: err})
}

// Fatal returns the first fatal record, or nil when the call succeeded.
func (s *Sink) Fatal() *CoderError {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Severity == SeverityFatal {
			return r
		}
	}
	return nil
}

// Records returns a copy of the journal in recording order.
func (s *Sink) Records() []*CoderError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*CoderError, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of recorded entries.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
