package diag

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind classifies a pipeline problem.
type Kind string

const (
	KindUnknown         Kind = "unknown"
	KindMissingResource Kind = "missing_mandatory_resource"
	KindMalformedInput  Kind = "malformed_structural_input"
	KindUnclassified    Kind = "unclassified_record"
	KindSoftLookupMiss  Kind = "soft_lookup_miss"
	KindFetchFailure    Kind = "fetch_failure"
	KindDuplicate       Kind = "duplicate_record"
)

var (
	// ErrMissingResource marks a required input that could not be located or loaded.
	ErrMissingResource = errors.New("missing mandatory resource")

	// ErrMalformedInput marks a document that could not be parsed into its minimal shape.
	ErrMalformedInput = errors.New("malformed structural input")
)

// Error is a classified failure attached to a subject (file, endpoint, URL).
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel that corresponds to the kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMissingResource:
		return e.Kind == KindMissingResource
	case ErrMalformedInput:
		return e.Kind == KindMalformedInput
	}
	return false
}

// Missing wraps err as a missing mandatory resource.
func Missing(subject string, err error) error {
	return &Error{Kind: KindMissingResource, Subject: subject, Err: err}
}

// Malformed wraps err as malformed structural input.
func Malformed(subject string, err error) error {
	return &Error{Kind: KindMalformedInput, Subject: subject, Err: err}
}

// KindOf returns the kind carried by err, falling back to sentinel and
// standard library checks.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, ErrMissingResource) {
		return KindMissingResource
	}
	if errors.Is(err, ErrMalformedInput) {
		return KindMalformedInput
	}
	if errors.Is(err, os.ErrNotExist) {
		return KindMissingResource
	}
	return KindUnknown
}

// IsFatal reports whether err should abort the run.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindMissingResource, KindMalformedInput:
		return true
	}
	return false
}

// Entry is one collected warning.
type Entry struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (e Entry) String() string {
	if e.Subject == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Subject, e.Message)
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// List accumulates non-fatal warnings. The zero value is ready to use and a
// nil *List silently drops everything.
type List struct {
	entries []Entry
}

// Add records a warning.
func (l *List) Add(kind Kind, subject, format string, args ...any) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, Entry{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// AddError records err using its own kind.
func (l *List) AddError(err error) {
	if l == nil || err == nil {
		return
	}
	var de *Error
	if errors.As(err, &de) {
		l.Add(de.Kind, de.Subject, "%v", de.Err)
		return
	}
	l.Add(KindOf(err), "", "%v", err)
}

// Entries returns a copy of the collected warnings in insertion order.
func (l *List) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of collected warnings.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Count returns how many warnings of kind were collected.
func (l *List) Count(kind Kind) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Log prints every warning through logger using the "Warning:" prefix.
func (l *List) Log(logger Logger) {
	for _, e := range l.Entries() {
		logger.Printf("Warning: %s", e)
	}
}

func (l *List) String() string {
	var b strings.Builder
	for _, e := range l.Entries() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
