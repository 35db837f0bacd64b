package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures for reporting and exit code selection.
type ErrorKind string

const (
	KindConfig          ErrorKind = "config"
	KindNotFound        ErrorKind = "not_found"
	KindExternalProcess ErrorKind = "external_process"
	KindTimeout         ErrorKind = "timeout"
	KindWrite           ErrorKind = "write"
	KindCancelled       ErrorKind = "cancelled"
	KindUnknown         ErrorKind = "unknown"
)

// ResearchError carries the error kind and the directory or setting it relates to.
type ResearchError struct {
	Kind    ErrorKind
	Target  string // Directory, file or config key the error is about
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ResearchError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Target != "" {
		sb.WriteString(fmt.Sprintf(" [%s]", e.Target))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *ResearchError) Unwrap() error {
	return e.Err
}

// NewConfigError reports an invalid setting or unusable output root.
func NewConfigError(target, msg string, err error) *ResearchError {
	return &ResearchError{Kind: KindConfig, Target: target, Message: msg, Err: err}
}

// NewNotFoundError reports an explicitly listed directory that does not exist.
func NewNotFoundError(target, msg string, err error) *ResearchError {
	return &ResearchError{Kind: KindNotFound, Target: target, Message: msg, Err: err}
}

// NewProcessError reports a crash, nonzero exit or unusable output of the analyzer.
func NewProcessError(target, msg string, err error) *ResearchError {
	return &ResearchError{Kind: KindExternalProcess, Target: target, Message: msg, Err: err}
}

// NewTimeoutError reports an analyzer that exceeded its deadline.
func NewTimeoutError(target, msg string, err error) *ResearchError {
	return &ResearchError{Kind: KindTimeout, Target: target, Message: msg, Err: err}
}

// NewWriteError reports an artifact that could not be written.
func NewWriteError(target, msg string, err error) *ResearchError {
	return &ResearchError{Kind: KindWrite, Target: target, Message: msg, Err: err}
}

// NewCancelledError reports work skipped or interrupted by cancellation.
func NewCancelledError(target, msg string, err error) *ResearchError {
	return &ResearchError{Kind: KindCancelled, Target: target, Message: msg, Err: err}
}

// KindOf returns the kind of the first ResearchError in err's chain,
// or KindUnknown when there is none.
func KindOf(err error) ErrorKind {
	var re *ResearchError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return err != nil && KindOf(err) == KindConfig
}
