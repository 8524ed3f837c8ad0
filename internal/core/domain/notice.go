package domain

import (
	"context"
	"errors"
)

// Severity classifies a Notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice is a user-visible event: a short title and a readable detail.
type Notice struct {
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code,omitempty"`
}

// errorKind pairs an error type with its support code.
type errorKind struct {
	code  string
	match func(error) (titled, bool)
}

type titled interface {
	error
	Title() string
}

func as[T titled](err error) (titled, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{code: "CFG001", match: as[*ConfigError]},
	{code: "INP001", match: as[*EmptyInputError]},
	{code: "SCH001", match: as[*SchemaError]},
	{code: "MRK001", match: as[*MalformedMarkupError]},
	{code: "REM001", match: as[*RemoteRejectionError]},
	{code: "NET001", match: as[*TransportError]},
	{code: "STA001", match: as[*InvalidStateError]},
	{code: "FMT001", match: as[*UnsupportedFormatError]},
}

// Code returns the support code for err, or "ERR000" when err is not part
// of the known taxonomy. A nil error has no code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if _, ok := k.match(err); ok {
			return k.code
		}
	}
	switch {
	case errors.Is(err, ErrJobCancelled):
		return "JOB001"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CTX001"
	}
	return "ERR000"
}

// Describe converts err into a user-facing error Notice.
func Describe(err error) Notice {
	if err == nil {
		return Notice{}
	}
	n := Notice{
		Title:    "Unexpected error",
		Detail:   err.Error(),
		Severity: SeverityError,
		Code:     Code(err),
	}
	for _, k := range errorKinds {
		if t, ok := k.match(err); ok {
			n.Title = t.Title()
			n.Detail = t.Error()
			return n
		}
	}
	switch n.Code {
	case "JOB001":
		n.Title = "Cancelled"
	case "CTX001":
		n.Title = "Request interrupted"
	}
	return n
}

// Info describes err for storage on a BatchJob.
func Info(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	n := Describe(err)
	return &ErrorInfo{Title: n.Title, Detail: n.Detail, Code: n.Code}
}
