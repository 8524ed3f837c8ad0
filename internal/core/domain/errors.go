package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrJobCancelled is returned by waiters when the job they were waiting on
// was cancelled before it reached a terminal state.
var ErrJobCancelled = errors.New("batch job cancelled")

// ConfigError reports a missing credential or remote target.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Detail }
func (e *ConfigError) Title() string { return "Configuration error" }

// EmptyInputError reports that there is nothing to process.
type EmptyInputError struct {
	Detail string
}

func (e *EmptyInputError) Error() string {
	if e.Detail == "" {
		return "empty input: no records to process"
	}
	return "empty input: " + e.Detail
}
func (e *EmptyInputError) Title() string { return "No records" }

// SchemaError reports required columns absent from the input.
// Missing lists every absent column in contract order.
type SchemaError struct {
	Contract string
	Missing  []string
	Detail   string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Contract != "" {
		b.WriteString(" (" + e.Contract + ")")
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing required columns: " + strings.Join(e.Missing, ", "))
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}
func (e *SchemaError) Title() string { return "Missing columns" }

// MalformedMarkupError reports markup input that is not well formed.
type MalformedMarkupError struct {
	Err error
}

func (e *MalformedMarkupError) Error() string { return fmt.Sprintf("malformed markup: %v", e.Err) }
func (e *MalformedMarkupError) Unwrap() error { return e.Err }
func (e *MalformedMarkupError) Title() string { return "Invalid XML file" }

// TransportError reports that the remote service could not be reached.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Title() string { return "Service unreachable" }

// RemoteRejectionError carries a failure reported by the remote service.
// Message is the service-supplied text, verbatim.
type RemoteRejectionError struct {
	Op      string
	Message string
}

func (e *RemoteRejectionError) Error() string {
	if e.Op == "" {
		return "remote rejection: " + e.Message
	}
	return fmt.Sprintf("remote rejection during %s: %s", e.Op, e.Message)
}
func (e *RemoteRejectionError) Title() string { return "Request rejected" }

// InvalidStateError reports an operation attempted in the wrong job state.
type InvalidStateError struct {
	Op    string
	State JobState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while job is %s", e.Op, e.State)
}
func (e *InvalidStateError) Title() string { return "Operation not allowed" }

// UnsupportedFormatError reports an input file of an unknown type.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (expected .csv, .txt, .xml or .xlsx)", e.Name)
}
func (e *UnsupportedFormatError) Title() string { return "Unsupported file" }
